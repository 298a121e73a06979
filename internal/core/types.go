package core

import "github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"

type (
	EntityType      = domain.EntityType
	TypeRef         = domain.TypeRef
	Entity          = domain.Entity
	Change          = domain.Change
	Action          = domain.Action
	Observer        = domain.Observer
	FieldError      = domain.FieldError
	ValidationError = domain.ValidationError
	StructuralError = domain.StructuralError
	ErrNotFound     = domain.ErrNotFound
	MediaClock      = domain.MediaClock
)

const (
	TypeScenario      = domain.TypeScenario
	TypeBlock         = domain.TypeBlock
	TypeBlockToggler  = domain.TypeBlockToggler
	TypePage          = domain.TypePage
	TypeContent       = domain.TypeContent
	TypeController    = domain.TypeController
	TypeCursor        = domain.TypeCursor
	TypeMedia         = domain.TypeMedia
	TypeVideoRenderer = domain.TypeVideoRenderer
	TypeSVG           = domain.TypeSVG
	TypeAnimation     = domain.TypeAnimation
	TypeImage         = domain.TypeImage
)

const (
	ActionAdd     = domain.ActionAdd
	ActionUpdate  = domain.ActionUpdate
	ActionDelete  = domain.ActionDelete
	ActionRestore = domain.ActionRestore
	ActionArrange = domain.ActionArrange
	ActionOrder   = domain.ActionOrder
)
