package detail

import (
	"context"
	"sync"

	"github.com/Astemirdum/library-web/web/internal/errs"
	"github.com/Astemirdum/library-web/web/internal/form"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const CopiesPerPage = 10

type ConfirmKind string

const (
	ConfirmDeleteCopy ConfirmKind = "deleteCopy"
	ConfirmDeleteBook ConfirmKind = "deleteBook"
)

type Confirmation struct {
	Kind ConfirmKind
	ID   string
}

// Form is the edit-form scratch state.
type Form struct {
	SelectedCopyID string
	CostInput      string
	Image          form.ImageURL
	Errors         map[string]string
}

// View is a consistent copy of the session state.
type View struct {
	Open        bool
	Book        *model.Book
	Pending     *Confirmation
	Busy        bool
	Form        Form
	Copies      []model.BookCopy
	CopiesPage  int
	CopiesPages int
}

func (v View) SelectedCopy() (model.BookCopy, bool) {
	if v.Book == nil || v.Form.SelectedCopyID == "" {
		return model.BookCopy{}, false
	}
	for _, c := range v.Book.Copies {
		if c.ID == v.Form.SelectedCopyID {
			return c, true
		}
	}
	return model.BookCopy{}, false
}

// Session is the book detail panel: the selected group, its pending
// confirmation and the edit forms.
type Session struct {
	mu         sync.Mutex
	backend    Backend
	list       ListCache
	notify     Notifier
	log        *zap.Logger
	book       *model.Book
	pending    *Confirmation
	busy       bool
	form       Form
	copiesPage int
	openSeq    uint64
}

func NewSession(backend Backend, list ListCache, notify Notifier, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		backend:    backend,
		list:       list,
		notify:     notify,
		log:        log,
		copiesPage: 1,
	}
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Open:       s.book != nil,
		Busy:       s.busy,
		Form:       s.form,
		CopiesPage: s.copiesPage,
	}
	if s.form.Errors != nil {
		v.Form.Errors = make(map[string]string, len(s.form.Errors))
		for k, e := range s.form.Errors {
			v.Form.Errors[k] = e
		}
	}
	if s.pending != nil {
		p := *s.pending
		v.Pending = &p
	}
	if s.book != nil {
		b := *s.book
		b.Copies = append([]model.BookCopy(nil), s.book.Copies...)
		v.Book = &b
		v.CopiesPages = pages(len(b.Copies))
		start := (s.copiesPage - 1) * CopiesPerPage
		if start < len(b.Copies) {
			end := start + CopiesPerPage
			if end > len(b.Copies) {
				end = len(b.Copies)
			}
			v.Copies = b.Copies[start:end]
		}
	}
	return v
}

// Open loads the full group behind a list card. The list itself is not touched.
func (s *Session) Open(ctx context.Context, key model.GroupKey) error {
	s.mu.Lock()
	s.openSeq++
	seq := s.openSeq
	s.mu.Unlock()

	book, _, err := s.backend.Resolve(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.openSeq {
		return nil
	}
	if err != nil {
		s.log.Warn("open book", zap.String("groupId", key.GroupID), zap.String("id", key.ID), zap.Error(err))
		s.notify.Push(toast.Error, "openBookError", nil)
		return err
	}
	s.book = &book
	s.pending = nil
	s.form = Form{}
	s.copiesPage = 1
	return nil
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openSeq++
	s.closeLocked()
}

func (s *Session) closeLocked() {
	s.book = nil
	s.pending = nil
	s.form = Form{}
	s.copiesPage = 1
}

func (s *Session) RequestDeleteCopy(copyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book == nil {
		return errs.ErrNoSelection
	}
	if _, ok := findCopy(s.book.Copies, copyID); !ok {
		return errs.ErrCopyNotFound
	}
	s.pending = &Confirmation{Kind: ConfirmDeleteCopy, ID: copyID}
	return nil
}

func (s *Session) RequestDeleteBook() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book == nil {
		return errs.ErrNoSelection
	}
	s.pending = &Confirmation{Kind: ConfirmDeleteBook, ID: s.book.ID}
	return nil
}

func (s *Session) CancelConfirm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Confirm runs the pending destructive action.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	p := s.pending
	s.mu.Unlock()
	if p == nil {
		return errs.ErrNotConfirmed
	}
	switch p.Kind {
	case ConfirmDeleteCopy:
		return s.DeleteCopy(ctx, p.ID)
	case ConfirmDeleteBook:
		return s.DeleteBook(ctx, p.ID)
	default:
		return errs.ErrNotConfirmed
	}
}

// begin consumes the matching confirmation (when kind is set) and marks the session busy.
func (s *Session) begin(kind ConfirmKind, id string) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book == nil {
		return model.Book{}, errs.ErrNoSelection
	}
	if s.busy {
		return model.Book{}, errs.ErrBusy
	}
	if kind != "" {
		if s.pending == nil || s.pending.Kind != kind || s.pending.ID != id {
			return model.Book{}, errs.ErrNotConfirmed
		}
		s.pending = nil
	}
	s.busy = true
	return *s.book, nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// DeleteCopy removes one copy. The backend answers with the copies left in
// the group: when some remain the group is refetched and the list count
// patched; at zero the group is gone and the panel closes.
func (s *Session) DeleteCopy(ctx context.Context, copyID string) error {
	book, err := s.begin(ConfirmDeleteCopy, copyID)
	if err != nil {
		return err
	}
	defer s.end()

	resp, _, err := s.backend.DecreaseCopy(ctx, copyID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.mu.Lock()
			s.closeLocked()
			s.mu.Unlock()
			s.reconcileGone(ctx, book, copyID)
			s.notify.Push(toast.Info, "copyNotFound", nil)
			return errors.Wrap(errs.ErrCopyNotFound, err.Error())
		}
		s.log.Warn("decrease copy", zap.String("copyId", copyID), zap.Error(err))
		s.notify.Push(toast.Error, "copyDeleteError", nil)
		return err
	}

	key := book.Key()
	if resp.GroupID != "" {
		key.GroupID = resp.GroupID
	}

	if resp.CopiesCount <= 0 {
		s.mu.Lock()
		s.closeLocked()
		s.mu.Unlock()
		s.list.RemoveSummary(key)
		s.notify.Push(toast.Success, "copyDeletedSuccess", nil)
		return nil
	}

	count := resp.CopiesCount
	patch := model.SummaryPatch{CopiesCount: &count}
	refreshed, refetchErr := s.refetch(ctx, key)
	if refetchErr != nil {
		s.log.Warn("refetch group after copy delete", zap.String("groupId", key.GroupID), zap.Error(refetchErr))
		refreshed = book
		refreshed.Copies = withoutCopy(book.Copies, copyID)
	} else if refreshed.Status != "" {
		status := refreshed.Status
		patch.Status = &status
	}
	refreshed.CopiesCount = count

	s.mu.Lock()
	if s.book != nil && s.book.Key().Matches(book) {
		s.book = &refreshed
		if s.form.SelectedCopyID == copyID {
			s.form = Form{}
		}
		s.clampCopiesPage()
	}
	s.mu.Unlock()

	s.list.PatchSummary(key, patch)
	s.notify.Push(toast.Success, "copyDeletedSuccess", nil)
	return nil
}

// reconcileGone brings the list card in line after another session already
// removed the copy: the group is refetched for its count, and dropped when it
// is gone or the count cannot be learned and no copy is left.
func (s *Session) reconcileGone(ctx context.Context, book model.Book, copyID string) {
	key := book.Key()
	refreshed, err := s.refetch(ctx, key)
	switch {
	case err == nil && refreshed.CopiesCount > 0:
		count := refreshed.CopiesCount
		patch := model.SummaryPatch{CopiesCount: &count}
		if refreshed.Status != "" {
			status := refreshed.Status
			patch.Status = &status
		}
		s.list.PatchSummary(key, patch)
		return
	case err == nil, errors.Is(err, errs.ErrNotFound):
		s.list.RemoveSummary(key)
		return
	}
	s.log.Warn("refetch group after missing copy", zap.String("groupId", key.GroupID), zap.Error(err))
	left := len(withoutCopy(book.Copies, copyID))
	if left == 0 {
		s.list.RemoveSummary(key)
		return
	}
	s.list.PatchSummary(key, model.SummaryPatch{CopiesCount: &left})
}

// DeleteBook removes the whole group.
func (s *Session) DeleteBook(ctx context.Context, bookID string) error {
	book, err := s.begin(ConfirmDeleteBook, bookID)
	if err != nil {
		return err
	}
	defer s.end()

	if _, err := s.backend.DeleteBook(ctx, bookID); err != nil {
		s.log.Warn("delete book", zap.String("id", bookID), zap.Error(err))
		s.notify.Push(toast.Error, "bookDeleteError", nil)
		return err
	}

	s.mu.Lock()
	s.closeLocked()
	s.mu.Unlock()
	s.list.RemoveSummary(book.Key())
	s.notify.Push(toast.Success, "bookDeletedSuccess", nil)
	return nil
}

// UpdateGeneral saves the fields shared by every copy of the group. An image
// URL that fails validation is left out; the rest is still saved.
func (s *Session) UpdateGeneral(ctx context.Context, info model.GeneralInfo) error {
	img := form.ValidateImageURL(info.ImageURL)
	fields := form.Validate(info)
	delete(fields, "imageUrl")

	s.mu.Lock()
	s.form.Image = img
	s.form.Errors = fields
	s.mu.Unlock()
	if len(fields) > 0 {
		s.notify.Push(toast.Error, "fillAllRequiredFields", nil)
		return &errs.ValidationError{Fields: fields}
	}

	book, err := s.begin("", "")
	if err != nil {
		return err
	}
	defer s.end()

	if !img.Valid() {
		info.ImageURL = book.ImageURL
	} else {
		info.ImageURL = img.Value
	}
	groupID := book.GroupID
	if groupID == "" {
		groupID = book.ID
	}

	updated, _, err := s.backend.UpdateGeneral(ctx, groupID, info)
	if err != nil {
		s.log.Warn("update general", zap.String("groupId", groupID), zap.Error(err))
		s.notify.Push(toast.Error, "bookUpdateError", nil)
		return err
	}
	if updated.Copies == nil {
		updated.Copies = book.Copies
	}

	s.mu.Lock()
	if s.book != nil && s.book.Key().Matches(book) {
		s.book = &updated
		s.clampCopiesPage()
	}
	s.mu.Unlock()
	s.notify.Push(toast.Success, "bookUpdatedSuccess", nil)
	return nil
}

// UpdateCopy saves one copy; only that entry of the group is replaced.
func (s *Session) UpdateCopy(ctx context.Context, copyID string, f model.CopyForm) error {
	f.Cost = form.NormalizeCost(form.FilterCost(f.Cost))
	if err := s.validateCopy(f); err != nil {
		return err
	}

	book, err := s.begin("", "")
	if err != nil {
		return err
	}
	defer s.end()
	if _, ok := findCopy(book.Copies, copyID); !ok {
		return errs.ErrCopyNotFound
	}

	updated, _, err := s.backend.UpdateCopy(ctx, copyID, f)
	if err != nil {
		s.log.Warn("update copy", zap.String("copyId", copyID), zap.Error(err))
		s.notify.Push(toast.Error, "copyUpdateError", nil)
		return err
	}

	s.mu.Lock()
	if s.book != nil {
		if i, ok := findCopy(s.book.Copies, copyID); ok {
			copies := append([]model.BookCopy(nil), s.book.Copies...)
			if updated.ID == "" {
				updated.ID = copyID
			}
			copies[i] = updated
			s.book.Copies = copies
		}
		s.form.CostInput = form.FormatCost(updated.Cost)
	}
	s.mu.Unlock()
	s.notify.Push(toast.Success, "copyUpdatedSuccess", nil)
	return nil
}

// AddCopy adds another copy to the open group.
func (s *Session) AddCopy(ctx context.Context, f model.CopyForm) error {
	f.Cost = form.NormalizeCost(form.FilterCost(f.Cost))
	if err := s.validateCopy(f); err != nil {
		return err
	}

	book, err := s.begin("", "")
	if err != nil {
		return err
	}
	defer s.end()

	created, _, err := s.backend.AddCopy(ctx, book.ID, f)
	if err != nil {
		s.log.Warn("add copy", zap.String("id", book.ID), zap.Error(err))
		s.notify.Push(toast.Error, "copyAddError", nil)
		return err
	}

	key := book.Key()
	if key.GroupID == "" {
		key.GroupID = created.GroupID
	}
	count := created.CopiesCount
	refreshed, refetchErr := s.refetch(ctx, key)
	if refetchErr == nil {
		count = refreshed.CopiesCount
		s.mu.Lock()
		if s.book != nil && s.book.Key().Matches(book) {
			s.book = &refreshed
		}
		s.mu.Unlock()
	} else {
		s.log.Warn("refetch group after add copy", zap.String("groupId", key.GroupID), zap.Error(refetchErr))
	}
	if count > 0 {
		s.list.PatchSummary(book.Key(), model.SummaryPatch{CopiesCount: &count})
	}
	s.notify.Push(toast.Success, "copyAddedSuccess", nil)
	return nil
}

func (s *Session) validateCopy(f model.CopyForm) error {
	fields := form.Validate(f)
	s.mu.Lock()
	s.form.Errors = fields
	s.mu.Unlock()
	if len(fields) > 0 {
		s.notify.Push(toast.Error, "fillAllRequiredFields", nil)
		return &errs.ValidationError{Fields: fields}
	}
	return nil
}

func (s *Session) refetch(ctx context.Context, key model.GroupKey) (model.Book, error) {
	if key.GroupID != "" {
		book, _, err := s.backend.GetGroup(ctx, key.GroupID)
		return book, err
	}
	book, _, err := s.backend.Resolve(ctx, key)
	return book, err
}

// SelectCopy loads a copy into the copy form.
func (s *Session) SelectCopy(copyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.book == nil {
		return errs.ErrNoSelection
	}
	i, ok := findCopy(s.book.Copies, copyID)
	if !ok {
		return errs.ErrCopyNotFound
	}
	s.form.SelectedCopyID = copyID
	s.form.CostInput = form.FormatCost(s.book.Copies[i].Cost)
	s.form.Errors = nil
	return nil
}

// SetCostInput filters a keystroke into the cost field and returns what is kept.
func (s *Session) SetCostInput(raw string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.CostInput = form.FilterCost(raw)
	return s.form.CostInput
}

func (s *Session) BlurCost() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.CostInput = form.NormalizeCost(s.form.CostInput)
	return s.form.CostInput
}

func (s *Session) SetImageURL(raw string) form.ImageURL {
	img := form.ValidateImageURL(raw)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Image = img
	return img
}

// SetCopiesPage moves the copy list to page n, clamped to the available pages.
func (s *Session) SetCopiesPage(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.copiesPage = n
	s.clampCopiesPage()
	return s.copiesPage
}

func (s *Session) clampCopiesPage() {
	total := 1
	if s.book != nil {
		total = pages(len(s.book.Copies))
	}
	if s.copiesPage > total {
		s.copiesPage = total
	}
	if s.copiesPage < 1 {
		s.copiesPage = 1
	}
}

func pages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + CopiesPerPage - 1) / CopiesPerPage
}

func findCopy(copies []model.BookCopy, id string) (int, bool) {
	for i := range copies {
		if copies[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

func withoutCopy(copies []model.BookCopy, id string) []model.BookCopy {
	out := make([]model.BookCopy, 0, len(copies))
	for _, c := range copies {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
