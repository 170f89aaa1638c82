package model

type Document struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Icon       string `json:"icon"`
	CoverImage string `json:"cover_image"`
	ParentID   string `json:"parent_id"`
	Archived   bool   `json:"archived"`
	Published  bool   `json:"published"`
	Ctime      int64  `json:"ctime"`
	Mtime      int64  `json:"mtime"`
}
