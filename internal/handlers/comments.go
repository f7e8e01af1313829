package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quill/internal/services"
)

type CommentHandler struct {
	base
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService, production bool) *CommentHandler {
	return &CommentHandler{base: base{production: production}, comments: comments}
}

// ListForPost returns the approved root comments of a post with their
// approved direct replies.
func (h *CommentHandler) ListForPost(c *gin.Context) {
	postID, valid := h.pathID(c, "postId")
	if !valid {
		return
	}
	comments, err := h.comments.ListApprovedRootComments(c.Request.Context(), postID, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	okList(c, comments)
}

func (h *CommentHandler) Replies(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	replies, err := h.comments.Replies(c.Request.Context(), id, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	okList(c, replies)
}

// Add accepts comments from guests and signed in users alike.
func (h *CommentHandler) Add(c *gin.Context) {
	var in services.CommentInput
	if !h.bindJSON(c, &in) {
		return
	}
	comment, err := h.comments.AddComment(c.Request.Context(), in, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	message := "Comment added successfully"
	if comment.IsGuest() {
		message = "Your comment has been submitted and is pending approval"
	}
	okMessage(c, http.StatusCreated, message, comment)
}

func (h *CommentHandler) Update(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	var in struct {
		Content string `json:"content"`
	}
	if !h.bindJSON(c, &in) {
		return
	}
	comment, err := h.comments.UpdateComment(c.Request.Context(), id, in.Content, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	if err := h.comments.DeleteComment(c.Request.Context(), id, principal(c)); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}

func (h *CommentHandler) Approve(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	comment, err := h.comments.ApproveComment(c.Request.Context(), id, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, comment)
}

func (h *CommentHandler) Reject(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	comment, err := h.comments.RejectComment(c.Request.Context(), id, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, comment)
}

// Pending is the moderation queue.
func (h *CommentHandler) Pending(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.comments.ListPendingComments(c.Request.Context(), principal(c), page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	okPage(c, result)
}
