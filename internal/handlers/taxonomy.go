package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"quill/internal/services"
)

// CategoryHandler serves categories.
type CategoryHandler struct {
	base
	taxonomy *services.TaxonomyService
}

func NewCategoryHandler(taxonomy *services.TaxonomyService, production bool) *CategoryHandler {
	return &CategoryHandler{base: base{production: production}, taxonomy: taxonomy}
}

// List returns every category with its published post count.
func (h *CategoryHandler) List(c *gin.Context) {
	cats, err := h.taxonomy.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	okList(c, cats)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	cat, err := h.taxonomy.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, cat)
}

func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	cat, err := h.taxonomy.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, cat)
}

func (h *CategoryHandler) Posts(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	page, limit := pageParams(c)
	result, err := h.taxonomy.CategoryPosts(c.Request.Context(), id, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	okPage(c, result)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var in services.CategoryInput
	if !h.bindJSON(c, &in) {
		return
	}
	cat, err := h.taxonomy.CreateCategory(c.Request.Context(), in, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, cat)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	var in services.CategoryInput
	if !h.bindJSON(c, &in) {
		return
	}
	cat, err := h.taxonomy.UpdateCategory(c.Request.Context(), id, in, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	if err := h.taxonomy.DeleteCategory(c.Request.Context(), id, principal(c)); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}

// TagHandler serves tags.
type TagHandler struct {
	base
	taxonomy *services.TaxonomyService
}

func NewTagHandler(taxonomy *services.TaxonomyService, production bool) *TagHandler {
	return &TagHandler{base: base{production: production}, taxonomy: taxonomy}
}

func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.taxonomy.ListTags(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	okList(c, tags)
}

func (h *TagHandler) Get(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	tag, err := h.taxonomy.GetTag(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, tag)
}

func (h *TagHandler) GetBySlug(c *gin.Context) {
	tag, err := h.taxonomy.GetTagBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, tag)
}

func (h *TagHandler) Create(c *gin.Context) {
	var in services.TagInput
	if !h.bindJSON(c, &in) {
		return
	}
	tag, err := h.taxonomy.CreateTag(c.Request.Context(), in, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, tag)
}

func (h *TagHandler) Update(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	var in services.TagInput
	if !h.bindJSON(c, &in) {
		return
	}
	tag, err := h.taxonomy.UpdateTag(c.Request.Context(), id, in, principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, tag)
}

func (h *TagHandler) Delete(c *gin.Context) {
	id, valid := h.pathID(c, "id")
	if !valid {
		return
	}
	if err := h.taxonomy.DeleteTag(c.Request.Context(), id, principal(c)); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
