package domain

// Quote is an inspirational quote shown on the storefront dashboard.
type Quote struct {
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
}
