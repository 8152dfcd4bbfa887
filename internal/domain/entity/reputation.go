package entity

import "time"

// Comment is a single customer rating attached to a vendor profile.
// IDs are assigned by the reputation service, never by callers.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Reputation holds a vendor's comments in insertion order together with the
// cached mean of their ratings. AverageRating is derived data: it is always
// recomputed from the full comment set, never adjusted incrementally.
type Reputation struct {
	Comments      []Comment `json:"comments"`
	AverageRating float64   `json:"average_rating"`
}

// Add appends a comment and recomputes the aggregate.
func (r *Reputation) Add(c Comment) {
	r.Comments = append(r.Comments, c)
	r.Recalculate()
}

// Find returns a pointer into the comment set, or nil if the id is unknown.
func (r *Reputation) Find(commentID string) *Comment {
	for i := range r.Comments {
		if r.Comments[i].ID == commentID {
			return &r.Comments[i]
		}
	}
	return nil
}

// Recalculate rebuilds AverageRating from the current comment set.
func (r *Reputation) Recalculate() {
	if len(r.Comments) == 0 {
		r.AverageRating = 0
		return
	}
	var sum float64
	for _, c := range r.Comments {
		sum += c.Rating
	}
	r.AverageRating = sum / float64(len(r.Comments))
}
