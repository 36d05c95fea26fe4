package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username   string             `bson:"username" json:"username"`
	Password   string             `bson:"password" json:"-"`
	Email      string             `bson:"email" json:"email"`
	Firstname  string             `bson:"firstname" json:"firstname"`
	Lastname   string             `bson:"lastname" json:"lastname"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	Role       string             `bson:"role" json:"role"` // create, approve, purchase, admin
	Status     string             `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
