package domain

import "sort"

// Staff is a teacher or employee listed on a school site.
type Staff struct {
	ID        int64  `json:"id"`
	SchoolID  int64  `json:"school_id"`
	Name      string `json:"name"`
	Position  string `json:"position"`
	PhotoURL  string `json:"photo_url,omitempty"`
	Bio       string `json:"bio,omitempty"`
	IsPublic  bool   `json:"is_public"`
	SortOrder int    `json:"sort_order"`
}

// StaffInput carries the editable fields of a staff record.
type StaffInput struct {
	Name      string `json:"name"`
	Position  string `json:"position"`
	PhotoURL  string `json:"photo_url"`
	Bio       string `json:"bio"`
	IsPublic  bool   `json:"is_public"`
	SortOrder int    `json:"sort_order"`
}

// SortStaff orders staff by SortOrder, ties by ascending id.
func SortStaff(staff []Staff) {
	sort.SliceStable(staff, func(i, j int) bool {
		if staff[i].SortOrder != staff[j].SortOrder {
			return staff[i].SortOrder < staff[j].SortOrder
		}
		return staff[i].ID < staff[j].ID
	})
}
