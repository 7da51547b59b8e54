// Package revision holds the state of a vehicle inspection in progress: the
// maintenance checklist, items added by the inspector and the photos attached
// to each item.
package revision

import (
	"encoding/json"
	"slices"

	"github.com/erazemk/taller/internal/model"
)

// State is the inspection state. The zero value is an empty inspection.
//
// Operations never fail. Operations that can miss (unknown code, index out of
// range) report whether anything changed; callers that don't care may ignore
// the result.
type State struct {
	Categories []model.Category        `json:"articulosMantenimiento"`
	AddedItems []model.Item            `json:"articulosAgregados"`
	Photos     []model.PhotoAttachment `json:"articulosFotos"`
}

// MarshalJSON writes absent collections as empty arrays, never null.
func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	return json.Marshal(plain(s.normalized()))
}

// normalized returns s with nil collections replaced by empty ones.
func (s State) normalized() State {
	if s.Categories == nil {
		s.Categories = []model.Category{}
	}
	if s.AddedItems == nil {
		s.AddedItems = []model.Item{}
	}
	if s.Photos == nil {
		s.Photos = []model.PhotoAttachment{}
	}
	copied := false
	for i, c := range s.Categories {
		if c.Items != nil {
			continue
		}
		if !copied {
			s.Categories = slices.Clone(s.Categories)
			copied = true
		}
		s.Categories[i].Items = []model.Item{}
	}
	copied = false
	for i, p := range s.Photos {
		if p.Images != nil {
			continue
		}
		if !copied {
			s.Photos = slices.Clone(s.Photos)
			copied = true
		}
		s.Photos[i].Images = []model.Image{}
	}
	return s
}

// LoadCategories replaces the checklist.
func (s *State) LoadCategories(categories []model.Category) {
	s.Categories = cloneCategories(categories)
}

// ResetAll clears added items and photos and unsets every checklist item,
// keeping the checklist itself.
func (s *State) ResetAll() {
	s.AddedItems = []model.Item{}
	s.Photos = []model.PhotoAttachment{}
	for i := range s.Categories {
		for j := range s.Categories[i].Items {
			s.Categories[i].Items[j].State = model.StateUnset
		}
	}
}

// Activate marks every checklist item with the given code as passed and
// returns the number of matches.
func (s *State) Activate(code string) int {
	return s.setState(code, model.StateActive)
}

// Deactivate marks every checklist item with the given code as failed and
// returns the number of matches.
func (s *State) Deactivate(code string) int {
	return s.setState(code, model.StateInactive)
}

func (s *State) setState(code string, state model.ItemState) int {
	n := 0
	for i := range s.Categories {
		for j := range s.Categories[i].Items {
			if s.Categories[i].Items[j].Code == code {
				s.Categories[i].Items[j].State = state
				n++
			}
		}
	}
	return n
}

// AddItem appends an ad-hoc item. Duplicate names are allowed.
func (s *State) AddItem(name string, active bool) {
	s.AddedItems = append(s.AddedItems, model.Item{
		Name:        name,
		Description: name,
		State:       model.StateOf(active),
	})
}

// RemoveItem removes every added item with the given name and returns how
// many were removed.
func (s *State) RemoveItem(name string) int {
	before := len(s.AddedItems)
	s.AddedItems = slices.DeleteFunc(s.AddedItems, func(it model.Item) bool {
		return it.Name == name
	})
	return before - len(s.AddedItems)
}

// Attachment returns the photos attached to code, or nil.
func (s State) Attachment(code string) []model.Image {
	if i := s.photoIndex(code); i >= 0 {
		return s.Photos[i].Images
	}
	return nil
}

func (s State) photoIndex(code string) int {
	return slices.IndexFunc(s.Photos, func(p model.PhotoAttachment) bool {
		return p.ItemCode == code
	})
}

// AddImage appends img to the photos of code, creating the attachment if
// needed.
func (s *State) AddImage(code string, img model.Image) {
	if i := s.photoIndex(code); i >= 0 {
		s.Photos[i].Images = append(s.Photos[i].Images, img)
		return
	}
	s.Photos = append(s.Photos, model.PhotoAttachment{ItemCode: code, Images: []model.Image{img}})
}

// RemoveImage removes the photo at index. An attachment left without photos
// is deleted.
func (s *State) RemoveImage(code string, index int) bool {
	i := s.photoIndex(code)
	if i < 0 || index < 0 || index >= len(s.Photos[i].Images) {
		return false
	}
	images := slices.Delete(slices.Clone(s.Photos[i].Images), index, index+1)
	if len(images) == 0 {
		s.Photos = slices.Delete(s.Photos, i, i+1)
		return true
	}
	s.Photos[i].Images = images
	return true
}

// UpdateImage replaces the photo at index in place.
func (s *State) UpdateImage(code string, index int, img model.Image) bool {
	i := s.photoIndex(code)
	if i < 0 || index < 0 || index >= len(s.Photos[i].Images) {
		return false
	}
	s.Photos[i].Images[index] = img
	return true
}

// SetImages replaces all photos of code. An empty list deletes the attachment.
func (s *State) SetImages(code string, images []model.Image) {
	i := s.photoIndex(code)
	if len(images) == 0 {
		if i >= 0 {
			s.Photos = slices.Delete(s.Photos, i, i+1)
		}
		return
	}
	images = slices.Clone(images)
	if i >= 0 {
		s.Photos[i].Images = images
		return
	}
	s.Photos = append(s.Photos, model.PhotoAttachment{ItemCode: code, Images: images})
}

// Clone returns a deep copy of the state.
func (s *State) Clone() State {
	c := State{
		Categories: cloneCategories(s.Categories),
		AddedItems: slices.Clone(s.AddedItems),
	}
	if s.Photos != nil {
		c.Photos = make([]model.PhotoAttachment, len(s.Photos))
		for i, p := range s.Photos {
			c.Photos[i] = model.PhotoAttachment{ItemCode: p.ItemCode, Images: slices.Clone(p.Images)}
		}
	}
	return c
}

func cloneCategories(categories []model.Category) []model.Category {
	if categories == nil {
		return nil
	}
	out := make([]model.Category, len(categories))
	for i, c := range categories {
		out[i] = model.Category{Name: c.Name, Items: slices.Clone(c.Items)}
	}
	return out
}

// Summary counts the checklist and added items, the failed ones among them
// and the attached photos.
func (s State) Summary() (items, failed, photos int) {
	count := func(it model.Item) {
		items++
		if it.State == model.StateInactive {
			failed++
		}
	}
	for _, c := range s.Categories {
		for _, it := range c.Items {
			count(it)
		}
	}
	for _, it := range s.AddedItems {
		count(it)
	}
	for _, p := range s.Photos {
		photos += len(p.Images)
	}
	return items, failed, photos
}

// images returns every attached image in attachment order.
func (s *State) images() []model.Image {
	var out []model.Image
	for _, p := range s.Photos {
		out = append(out, p.Images...)
	}
	return out
}
