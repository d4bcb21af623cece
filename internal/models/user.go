package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleRenter UserRole = "renter"
	UserRoleOwner  UserRole = "owner"
)

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	Email        string             `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Role         UserRole           `json:"role" bson:"role" default:"renter"`
	Image        string             `json:"image" bson:"image"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

func (r UserRole) Valid() bool {
	return r == UserRoleRenter || r == UserRoleOwner
}
