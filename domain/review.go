package domain

import "time"

// Review is a user's rating of a dish.
type Review struct {
	ID        string    `json:"id" bson:"_id"`
	User      string    `json:"user" bson:"user"`
	Dish      string    `json:"dish" bson:"dish"`
	Rating    float64   `json:"rating" bson:"rating"`
	Review    string    `json:"review" bson:"review"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
