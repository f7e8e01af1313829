package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quill/internal/services"
)

type PostHandler struct {
	base
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService, production bool) *PostHandler {
	return &PostHandler{base: base{production: production}, posts: posts}
}

// List pages through published posts.
// Query: page, limit, category (id or slug), tag (id or slug), author (id), search.
func (h *PostHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	filter := services.PostFilter{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Author:   c.Query("author"),
		Search:   c.Query("search"),
	}
	result, err := h.posts.ListPosts(c.Request.Context(), filter, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	okPage(c, result)
}

func (h *PostHandler) Get(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	post, err := h.posts.GetPost(c.Request.Context(), id, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, post)
}

func (h *PostHandler) GetBySlug(c *gin.Context) {
	post, err := h.posts.GetPostBySlug(c.Request.Context(), c.Param("slug"), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, post)
}

// ListByUser lists all posts of one author, drafts included.
func (h *PostHandler) ListByUser(c *gin.Context) {
	userID, valid := h.pathID(c, "userId")
	if !valid {
		return
	}
	page, limit := pageParams(c)
	result, err := h.posts.ListPostsByAuthor(c.Request.Context(), userID, principal(c), page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	okPage(c, result)
}

func (h *PostHandler) Create(c *gin.Context) {
	var in services.PostInput
	if !h.bindJSON(c, &in) {
		return
	}
	post, err := h.posts.CreatePost(c.Request.Context(), in, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	var in services.PostInput
	if !h.bindJSON(c, &in) {
		return
	}
	post, err := h.posts.UpdatePost(c.Request.Context(), id, in, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	if err := h.posts.DeletePost(c.Request.Context(), id, principal(c)); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
