package helpers

import "go.mongodb.org/mongo-driver/bson/primitive"

// Session is the per-request identity resolved by the auth middleware and
// passed explicitly to every handler through the request context. Nothing
// about the caller lives in package-level state.
type Session struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

func (s *Session) IsAdmin() bool {
	return s.Role == "admin"
}

func (s *Session) IsVendor() bool {
	return s.Role == "vendor"
}

func (s *Session) IsCustomer() bool {
	return s.Role == "customer"
}

func (s *Session) IsOwner(userID string) bool {
	return s.UserID == userID
}

// ObjectID parses the session user id into a Mongo ObjectID.
func (s *Session) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s.UserID)
}
