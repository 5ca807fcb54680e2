package catalog

import (
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/remotelist"
)

type Card struct {
	Key         model.GroupKey
	ID          string
	GroupID     string
	Title       string
	Author      string
	Editorial   string
	Edition     string
	Location    string
	ImageURL    string
	Categories  []string
	CopiesCount int
	Status      model.CopyStatus
	Condition   model.Condition
	Company     string
	Available   bool
}

type PageLink struct {
	Number  int
	Current bool
}

// ListView is what the catalog grid renders. Exactly one of Loading, Error,
// Empty or a non-empty Cards holds, in that order of precedence.
type ListView struct {
	Cards       []Card
	TotalPages  int
	CurrentPage int
	Loading     bool
	Error       string
	Empty       bool
	Pages       []PageLink
	PrevPage    int
	NextPage    int
}

func BuildListView(s Snapshot, showCompany bool) ListView {
	v := ListView{
		TotalPages:  s.Result.TotalPages,
		CurrentPage: s.Result.CurrentPage,
	}
	if v.CurrentPage < 1 {
		v.CurrentPage = s.Query.Page
	}

	switch {
	case s.State == remotelist.Loading || s.State == remotelist.Idle:
		v.Loading = true
		return v
	case s.State == remotelist.Errored:
		if s.Err != nil {
			v.Error = s.Err.Error()
		} else {
			v.Error = "unknown error"
		}
		return v
	case len(s.Result.Books) == 0:
		v.Empty = true
		return v
	}

	v.Cards = make([]Card, 0, len(s.Result.Books))
	for _, b := range s.Result.Books {
		c := Card{
			Key:         b.Key(),
			ID:          b.ID,
			GroupID:     b.GroupID,
			Title:       b.Title,
			Author:      b.Author,
			Editorial:   b.Editorial,
			Edition:     b.Edition,
			Location:    b.Location,
			ImageURL:    b.ImageURL,
			Categories:  b.Categories,
			CopiesCount: b.CopiesCount,
			Status:      b.Status,
			Condition:   b.Condition,
			Available:   b.Status.Lendable(),
		}
		if showCompany {
			c.Company = b.Company
		}
		v.Cards = append(v.Cards, c)
	}

	for i := 1; i <= v.TotalPages; i++ {
		v.Pages = append(v.Pages, PageLink{Number: i, Current: i == v.CurrentPage})
	}
	if v.CurrentPage > 1 {
		v.PrevPage = v.CurrentPage - 1
	}
	if v.CurrentPage < v.TotalPages {
		v.NextPage = v.CurrentPage + 1
	}
	return v
}
