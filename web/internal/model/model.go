package model

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

type CoverType string

const (
	CoverHard CoverType = "hard"
	CoverSoft CoverType = "soft"
)

type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionGood    Condition = "good"
	ConditionRegular Condition = "regular"
	ConditionBad     Condition = "bad"
)

type CopyStatus string

const (
	StatusAvailable   CopyStatus = "available"
	StatusBorrowed    CopyStatus = "borrowed"
	StatusUnavailable CopyStatus = "unavailable"
)

// Lendable reports whether a copy with this status can be borrowed.
func (s CopyStatus) Lendable() bool {
	return s == StatusAvailable
}

type BookCopy struct {
	ID           string     `json:"_id"`
	GroupID      string     `json:"groupId"`
	InvoiceCode  string     `json:"invoiceCode"`
	Code         string     `json:"code"`
	Location     string     `json:"location"`
	Cost         float64    `json:"cost"`
	DateAcquired string     `json:"dateAcquired"`
	Condition    Condition  `json:"condition"`
	Status       CopyStatus `json:"status"`
	Observations string     `json:"observations"`
}

// AcquiredOn renders dateAcquired as YYYY-MM-DD for date inputs.
func (c BookCopy) AcquiredOn() string {
	return DateOnly(c.DateAcquired)
}

type Book struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Editorial   string     `json:"editorial"`
	Edition     string     `json:"edition"`
	Categories  []string   `json:"categories"`
	CoverType   CoverType  `json:"coverType"`
	ImageURL    string     `json:"imageUrl"`
	GroupID     string     `json:"groupId"`
	CopiesCount int        `json:"copiesCount"`
	Status      CopyStatus `json:"status"`
	Condition   Condition  `json:"condition"`
	Location    string     `json:"location"`
	Company     string     `json:"company,omitempty"`
	Code        string     `json:"code,omitempty"`
	Description string     `json:"description,omitempty"`
	Copies      []BookCopy `json:"copies,omitempty"`
}

func (b Book) Key() GroupKey {
	return GroupKey{GroupID: b.GroupID, ID: b.ID}
}

type BookPage struct {
	Books       []Book `json:"books"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}

// BookQuery is the wire shape of GET /api/books.
type BookQuery struct {
	Page       int
	Search     string
	Categories []string
	Company    string
}

func (q BookQuery) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if len(q.Categories) > 0 {
		v.Set("categories", strings.Join(q.Categories, ","))
	}
	if q.Company != "" {
		v.Set("company", q.Company)
	}
	return v
}

// GroupKey identifies a list summary: groupId when known, _id otherwise.
type GroupKey struct {
	GroupID string
	ID      string
}

func (k GroupKey) Matches(b Book) bool {
	if k.GroupID != "" && b.GroupID != "" {
		return k.GroupID == b.GroupID
	}
	return k.ID != "" && k.ID == b.ID
}

// SummaryPatch holds the only fields reconciliation may write into a list summary.
type SummaryPatch struct {
	CopiesCount *int
	Status      *CopyStatus
	Condition   *Condition
}

func (p SummaryPatch) Apply(b *Book) {
	if p.CopiesCount != nil {
		b.CopiesCount = *p.CopiesCount
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Condition != nil {
		b.Condition = *p.Condition
	}
}

type DecreaseCopyResponse struct {
	Message     string `json:"message"`
	GroupID     string `json:"groupId"`
	CopiesCount int    `json:"copiesCount"`
}

// GeneralInfo holds the bibliographic fields shared by every copy of a group.
type GeneralInfo struct {
	Title      string    `json:"title" form:"title" validate:"required"`
	Author     string    `json:"author" form:"author" validate:"required"`
	Editorial  string    `json:"editorial" form:"editorial"`
	Edition    string    `json:"edition" form:"edition"`
	Categories []string  `json:"categories" form:"categories"`
	CoverType  CoverType `json:"coverType" form:"coverType" validate:"omitempty,oneof=hard soft"`
	ImageURL   string    `json:"imageUrl" form:"imageUrl" validate:"omitempty,http_url,max=2000"`
}

// CopyForm holds the fields owned by a single physical copy.
type CopyForm struct {
	InvoiceCode  string     `json:"invoiceCode" form:"invoiceCode" validate:"required"`
	Location     string     `json:"location" form:"location" validate:"required"`
	Cost         string     `json:"cost" form:"cost" validate:"required,numeric"`
	DateAcquired string     `json:"dateAcquired" form:"dateAcquired" validate:"required,datetime=2006-01-02"`
	Condition    Condition  `json:"condition" form:"condition" validate:"required,oneof=new good regular bad"`
	Observations string     `json:"observations" form:"observations"`
	Status       CopyStatus `json:"status,omitempty" form:"status" validate:"omitempty,oneof=available borrowed unavailable"`
}

// CreateBookForm creates a group together with its first copy.
type CreateBookForm struct {
	GeneralInfo `json:",inline"`
	CopyForm    `json:",inline"`
	Code        string `json:"code" form:"code" validate:"required"`
	Company     string `json:"company,omitempty" form:"-"`
}

type Facets struct {
	Categories []string `json:"categories"`
	Companies  []string `json:"companies"`
}

type LoanStatus string

const (
	LoanBorrowed LoanStatus = "borrowed"
	LoanReturned LoanStatus = "returned"
	LoanOverdue  LoanStatus = "overdue"
)

type BorrowRecord struct {
	ID                 string     `json:"_id"`
	BookID             string     `json:"bookId"`
	CopyID             string     `json:"copyId"`
	BookTitle          string     `json:"bookTitle"`
	CopyCode           string     `json:"copyCode,omitempty"`
	BorrowerName       string     `json:"borrowerName"`
	BorrowDate         time.Time  `json:"borrowDate"`
	ExpectedReturnDate time.Time  `json:"expectedReturnDate"`
	ReturnDate         *time.Time `json:"returnDate,omitempty"`
	Status             LoanStatus `json:"status"`
	Comments           string     `json:"comments,omitempty"`
	BorrowedBy         string     `json:"borrowedBy,omitempty"`
	ReturnedBy         string     `json:"returnedBy,omitempty"`
	Company            string     `json:"company,omitempty"`
}

// Overdue reports whether an open loan is past its expected return date.
func (r BorrowRecord) Overdue(now time.Time) bool {
	if r.Status == LoanOverdue {
		return true
	}
	return r.Status == LoanBorrowed && r.ReturnDate == nil && now.After(r.ExpectedReturnDate)
}

type LoanPage struct {
	Records     []BorrowRecord `json:"records"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// LoanQuery is the wire shape of GET /api/borrow/active and /api/borrow/history.
type LoanQuery struct {
	Page    int
	Search  string
	Status  LoanStatus
	Company string
}

func (q LoanQuery) Values() url.Values {
	v := url.Values{}
	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Company != "" {
		v.Set("company", q.Company)
	}
	return v
}

type BorrowForm struct {
	BookID             string `json:"bookId" form:"bookId" validate:"required"`
	CopyID             string `json:"copyId" form:"copyId" validate:"required"`
	BorrowerName       string `json:"borrowerName" form:"borrowerName" validate:"required"`
	BorrowDate         string `json:"borrowDate" form:"borrowDate" validate:"required,datetime=2006-01-02"`
	ExpectedReturnDate string `json:"expectedReturnDate" form:"expectedReturnDate" validate:"required,datetime=2006-01-02"`
	Comments           string `json:"comments,omitempty" form:"comments"`
}

type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type SignupForm struct {
	Username        string `json:"username" form:"username" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required"`
	ConfirmPassword string `json:"-" form:"confirmPassword" validate:"eqfield=Password"`
}

// AuthResponse is the backend answer for login and signup.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// UIEvent is published for every successful mutation made through the frontend.
type UIEvent struct {
	Action  string    `json:"action"`
	User    string    `json:"user,omitempty"`
	Company string    `json:"company,omitempty"`
	BookID  string    `json:"bookId,omitempty"`
	GroupID string    `json:"groupId,omitempty"`
	CopyID  string    `json:"copyId,omitempty"`
	At      time.Time `json:"at"`
}

// DateOnly trims an ISO timestamp to YYYY-MM-DD; other inputs pass through.
func DateOnly(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.DateOnly)
	}
	if len(s) >= len(time.DateOnly) {
		if _, err := time.Parse(time.DateOnly, s[:len(time.DateOnly)]); err == nil {
			return s[:len(time.DateOnly)]
		}
	}
	return s
}
