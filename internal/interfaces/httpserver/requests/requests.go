package requests

// ContentRequest carries the body of a comment, reply or message. Blank and
// over-long content is rejected by the domain validator, not by binding.
type ContentRequest struct {
	Content string `json:"content"`
}

// ReplyFormRequest opens a reply form. Without content the form opens with an
// empty draft; with content the draft is replaced.
type ReplyFormRequest struct {
	Content *string `json:"content"`
}

// CollectionRequest switches the comment thread to another collection.
type CollectionRequest struct {
	CollectionID string `json:"collectionId" binding:"required"`
}

// StartConversationRequest names the counterpart of a new conversation.
type StartConversationRequest struct {
	UserID string `json:"userId" binding:"required"`
}
