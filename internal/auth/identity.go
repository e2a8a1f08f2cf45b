package auth

// Identity is the verified caller of a request.
type Identity struct {
	UserID int64
	Email  string
}
