package adapter

// AccountSnapshot pairs the two raw node responses for one address. Both
// halves are fetched before any derived metric is computed.
type AccountSnapshot struct {
	Account  *Account         `json:"account"`
	Resource *AccountResource `json:"resource"`
}
