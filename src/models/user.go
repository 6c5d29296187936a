package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string              `bson:"name" json:"name"`
	Email          string              `bson:"email" json:"email"`
	Password       string              `bson:"password,omitempty" json:"-"`
	Role           string              `bson:"role,omitempty" json:"role,omitempty"`
	ProjectManager *primitive.ObjectID `bson:"projectManager,omitempty" json:"projectManager,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt      time.Time           `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
