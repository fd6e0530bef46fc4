package model

import "time"

type CommentAuthor struct {
	UserHash   string `json:"userHash"`
	Nickname   string `json:"nickname"`
	AvatarPath string `json:"avatarPath"`
}

// Comment is one flat record of a post's thread. ParentHash is nil for root
// comments; DeletedAt marks a soft delete, the record keeps its place in the
// thread.
type Comment struct {
	ViewHash   string        `json:"viewHash"`
	PostHash   string        `json:"postHash"`
	Author     CommentAuthor `json:"author"`
	Body       string        `json:"body"`
	ParentHash *string       `json:"parentHash"`
	CreatedAt  time.Time     `json:"createDatetime"`
	DeletedAt  *time.Time    `json:"deleteDatetime"`
}

func (c *Comment) IsDeleted() bool {
	return c.DeletedAt != nil
}

type CreateCommentRequest struct {
	Body       string  `json:"body"`
	ParentHash *string `json:"parentHash,omitempty"`
}
