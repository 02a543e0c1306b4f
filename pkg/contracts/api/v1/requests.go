// Package api contains API contract definitions for the sector dashboard.
// Version v1 represents the current stable API version.
package api

import (
	"bvmtdash/pkg/contracts/domain"
)

// SelectionRequest is the body of the reactive update call.
// An empty sector is valid and means "nothing selected".
type SelectionRequest struct {
	Sector string `json:"sector" validate:"max=128,sectorname"`
}

// SectorsResponse lists the selectable sectors
type SectorsResponse struct {
	Sectors []string `json:"sectors"`
	Default string   `json:"default"`
}

// UpdateResponse carries both outputs of one selection change
type UpdateResponse struct {
	Figure  domain.Figure     `json:"figure"`
	Rows    []domain.TableRow `json:"rows"`
	Columns []domain.Column   `json:"columns"`
}

// NewUpdateResponse converts a sector view to the update payload
func NewUpdateResponse(view domain.SectorView) UpdateResponse {
	return UpdateResponse{
		Figure:  view.Figure,
		Rows:    view.Rows,
		Columns: view.Columns,
	}
}
