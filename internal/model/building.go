package model

import (
	"time"

	"github.com/google/uuid"
)

// Building groups rooms under one physical address. Building names are
// unique and stored lower-cased; comparison therefore never has to worry
// about case.
//
// Fields:
//  ID          – primary key identifier (UUIDv7).
//  Name        – unique, case-normalized building name.
//  Description – optional free-form description.
//  Address     – optional postal address.
//  State       – optional state/region.
//  CreatedAt   – creation timestamp.
type Building struct {
	ID          uuid.UUID `json:"id"`           // buildings.id
	Name        string    `json:"name"`         // buildings.name
	Description *string   `json:"description"`  // buildings.description (nullable)
	Address     *string   `json:"address"`      // buildings.address (nullable)
	State       *string   `json:"state"`        // buildings.state (nullable)
	CreatedAt   time.Time `json:"created_at"`   // buildings.created_at
}
