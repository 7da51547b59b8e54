package revision

import "github.com/erazemk/taller/internal/model"

// Action is a mutation that can be dispatched to a Store.
type Action interface {
	apply(s *State) bool
}

// LoadCategories replaces the checklist.
type LoadCategories struct {
	Categories []model.Category
}

// ResetAll clears the inspection, keeping the checklist.
type ResetAll struct{}

// Activate marks an item as passed.
type Activate struct {
	Code string
}

// Deactivate marks an item as failed.
type Deactivate struct {
	Code string
}

// AddItem appends an ad-hoc item.
type AddItem struct {
	Name   string
	Active bool
}

// RemoveItem removes ad-hoc items by name.
type RemoveItem struct {
	Name string
}

// AddImage attaches a photo to an item.
type AddImage struct {
	Code  string
	Image model.Image
}

// RemoveImage removes a photo by position.
type RemoveImage struct {
	Code  string
	Index int
}

// UpdateImage replaces a photo by position.
type UpdateImage struct {
	Code  string
	Index int
	Image model.Image
}

// SetImages replaces all photos of an item.
type SetImages struct {
	Code   string
	Images []model.Image
}

func (a LoadCategories) apply(s *State) bool { s.LoadCategories(a.Categories); return true }
func (ResetAll) apply(s *State) bool         { s.ResetAll(); return true }
func (a Activate) apply(s *State) bool       { return s.Activate(a.Code) > 0 }
func (a Deactivate) apply(s *State) bool     { return s.Deactivate(a.Code) > 0 }
func (a AddItem) apply(s *State) bool        { s.AddItem(a.Name, a.Active); return true }
func (a RemoveItem) apply(s *State) bool     { return s.RemoveItem(a.Name) > 0 }
func (a AddImage) apply(s *State) bool       { s.AddImage(a.Code, a.Image); return true }
func (a RemoveImage) apply(s *State) bool    { return s.RemoveImage(a.Code, a.Index) }
func (a UpdateImage) apply(s *State) bool    { return s.UpdateImage(a.Code, a.Index, a.Image) }
func (a SetImages) apply(s *State) bool      { s.SetImages(a.Code, a.Images); return true }

// Reduce applies a to s and reports whether it matched anything.
func Reduce(s *State, a Action) bool {
	return a.apply(s)
}
