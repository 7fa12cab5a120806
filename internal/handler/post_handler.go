package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"inkpress/internal/errors"
	"inkpress/internal/model"
	"inkpress/internal/service"
	"inkpress/internal/upload"
)

// PostHandler handles post CRUD endpoints.
type PostHandler struct {
	postService service.PostService
	uploads     *upload.Store
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService, uploads *upload.Store) *PostHandler {
	return &PostHandler{postService: postService, uploads: uploads}
}

// AuthorResponse is the populated author reference on a post.
type AuthorResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// PostResponse represents a post with its author populated.
type PostResponse struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	Content   string         `json:"content"`
	Cover     string         `json:"cover"`
	Author    AuthorResponse `json:"author"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toPostResponse(post *model.Post) PostResponse {
	return PostResponse{
		ID:      post.ID,
		Title:   post.Title,
		Summary: post.Summary,
		Content: post.Content,
		Cover:   post.Cover,
		Author: AuthorResponse{
			ID:       post.Author.ID,
			Username: post.Author.Username,
		},
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// Create godoc
// @Summary Create a post with a cover image
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Cover image"
// @Param title formData string true "Title"
// @Param summary formData string false "Summary"
// @Param content formData string false "Content"
// @Success 201 {object} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post [post]
func (h *PostHandler) Create(c echo.Context) error {
	claims, err := sessionClaims(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpErr := errors.MapErrorToHTTP(errors.ErrNoFile)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	staged, err := h.uploads.Stage(fileHeader)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
			Error: "failed to store upload",
			Code:  "UPLOAD_FAILED",
		})
	}

	post, err := h.postService.Create(
		c.Request().Context(),
		claims.UserID,
		c.FormValue("title"),
		c.FormValue("summary"),
		c.FormValue("content"),
		staged,
	)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, toPostResponse(post))
}

// Update godoc
// @Summary Update a post; cover is replaced only when a new file is sent
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param id formData string true "Post ID"
// @Param file formData file false "New cover image"
// @Param title formData string false "Title"
// @Param summary formData string false "Summary"
// @Param content formData string false "Content"
// @Success 200 {object} PostResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post [put]
func (h *PostHandler) Update(c echo.Context) error {
	claims, err := sessionClaims(c)
	if err != nil {
		return err
	}

	postID, err := strconv.ParseUint(c.FormValue("id"), 10, 32)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(errors.ErrMissingPostID)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	// The cover upload is optional on update: only an absent file field means
	// "keep the old cover". A malformed upload is still a client error.
	var staged service.CoverUpload
	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		stagedFile, err := h.uploads.Stage(fileHeader)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
				Error: "failed to store upload",
				Code:  "UPLOAD_FAILED",
			})
		}
		staged = stagedFile
	case err == http.ErrMissingFile:
		// no new cover
	default:
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid upload",
			Code:  "INVALID_UPLOAD",
		})
	}

	post, err := h.postService.Update(
		c.Request().Context(),
		claims.UserID,
		uint(postID),
		c.FormValue("title"),
		c.FormValue("summary"),
		c.FormValue("content"),
		staged,
	)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, toPostResponse(post))
}

// List godoc
// @Summary List the most recent posts
// @Tags posts
// @Produce json
// @Success 200 {array} PostResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post [get]
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.postService.ListRecent(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp := make([]PostResponse, 0, len(posts))
	for i := range posts {
		resp = append(resp, toPostResponse(&posts[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get a single post by id
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /post/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(errors.ErrPostNotFound)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	post, err := h.postService.Get(c.Request().Context(), uint(id))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, toPostResponse(post))
}
