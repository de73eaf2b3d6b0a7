package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Category is a named budget bucket. Categories form a tree through ParentID.
type Category struct {
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	ParentID    *string         `json:"parentCategory"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Budget      decimal.Decimal `json:"budget"`
}

// HasParent reports whether the category sits below another category.
func (c *Category) HasParent() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// CategoryFields holds the caller-supplied fields for a new category.
type CategoryFields struct {
	ParentID    *string          `json:"parentCategory"`
	Budget      *decimal.Decimal `json:"budget"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
}

// CategoryPatch holds the fields to merge into an existing category.
// A nil field is left untouched. A ParentID pointing at an empty string
// detaches the category from its parent; in JSON an explicit
// "parentCategory": null does the same.
type CategoryPatch struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	ParentID    *string          `json:"parentCategory"`
	Budget      *decimal.Decimal `json:"budget"`
}

// UnmarshalJSON decodes a patch, turning an explicit null parentCategory
// into a detach.
func (p *CategoryPatch) UnmarshalJSON(data []byte) error {
	type plain CategoryPatch
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return err
	}
	if raw, ok := present["parentCategory"]; ok && string(bytes.TrimSpace(raw)) == "null" {
		detach := ""
		decoded.ParentID = &detach
	}

	*p = CategoryPatch(decoded)
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.ParentID == nil && p.Budget == nil
}
