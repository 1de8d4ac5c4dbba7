package server

import (
	"log/slog"
	"strings"

	"portfolio/internal/cache"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
	"portfolio/internal/service"

	"github.com/gofiber/fiber/v2"
)

// visitorHeader carries the anonymous like token. It is client-chosen and spoofable.
const visitorHeader = "X-Visitor-ID"

// ListPosts handles GET /api/posts
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, defaultPageSize)

	var posts []*models.Post
	fetch := func() (err error) {
		posts, err = s.postService.ListPublished(ctx, page.Limit, page.Offset)
		return err
	}

	// Only the first page is what /blog renders.
	var err error
	if page.Offset == 0 && page.Limit == defaultPageSize {
		err = s.pages.Aside(ctx, cache.PathBlog, &posts, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// RecentPosts handles GET /api/posts/recent
// @Summary Latest published posts for the home page
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Router /posts/recent [get]
func (s *Server) RecentPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var posts []*models.Post
	err := s.pages.Aside(ctx, cache.PathHome, &posts, func() (err error) {
		posts, err = s.postService.ListRecent(ctx, service.DefaultRecentLimit)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPostBySlug handles GET /api/posts/slug/:slug
// @Summary Get a published post
// @Description Drafts are visible to the admin only. Each read counts one view.
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/slug/{slug} [get]
func (s *Server) GetPostBySlug(c *fiber.Ctx) error {
	ctx := c.UserContext()
	post, err := s.postService.GetBySlug(ctx, middleware.ActorFromCtx(c), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}

	id := post.ID
	s.runAsync(func() {
		bg, cancel := detached(ctx)
		defer cancel()
		if err := s.postService.IncrementView(bg, id); err != nil {
			slog.Default().DebugContext(bg, "view increment failed",
				slog.Uint64("post_id", uint64(id)),
				slog.String("error", err.Error()),
			)
		}
	})

	return c.JSON(post)
}

// GetLikeStatus handles GET /api/posts/:id/like
// @Summary Like state of a post for a visitor
// @Tags likes
// @Produce json
// @Param id path int true "Post ID"
// @Param visitor query string false "Visitor token"
// @Success 200 {object} models.LikeState
// @Router /posts/{id}/like [get]
func (s *Server) GetLikeStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	visitor := c.Query("visitor")
	if visitor == "" {
		visitor = c.Get(visitorHeader)
	}

	state, err := s.likeService.Status(c.UserContext(), id, visitor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// ToggleLike handles POST /api/posts/:id/like
// @Summary Like or unlike a post
// @Tags likes
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param X-Visitor-ID header string false "Visitor token"
// @Param request body object{visitor_id=string} false "Visitor token when no header is sent"
// @Success 200 {object} models.LikeState
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	visitor := strings.TrimSpace(c.Get(visitorHeader))
	if visitor == "" && len(c.Body()) > 0 {
		var req struct {
			VisitorID string `json:"visitor_id"`
		}
		if err := parseBody(c, &req); err != nil {
			return nil
		}
		visitor = req.VisitorID
	}

	state, err := s.likeService.Toggle(c.UserContext(), id, visitor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

// AdminListPosts handles GET /api/admin/posts
// @Summary List posts of every status
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "draft, published or archived"
// @Success 200 {array} models.Post
// @Router /admin/posts [get]
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()
	actor := middleware.ActorFromCtx(c)
	page := parsePagination(c, defaultPageSize)

	var (
		posts []*models.Post
		err   error
	)
	if status := c.Query("status"); status != "" {
		posts, err = s.postService.ListByStatus(ctx, actor, models.Status(status), page.Limit, page.Offset)
	} else {
		posts, err = s.postService.ListAll(ctx, actor, page.Limit, page.Offset)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/admin/posts
// @Summary Create a draft post
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.Create(c.UserContext(), middleware.ActorFromCtx(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// AdminGetPost handles GET /api/admin/posts/:id
func (s *Server) AdminGetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetByID(c.UserContext(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PATCH /api/admin/posts/:id
// @Summary Patch a post
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body models.PostPatch true "Fields to change"
// @Success 200 {object} models.Post
// @Router /admin/posts/{id} [patch]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch models.PostPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}
	post, err := s.postService.Update(c.UserContext(), middleware.ActorFromCtx(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// PublishPost handles POST /api/admin/posts/:id/publish
// @Summary Publish a post
// @Description Publishing an already published post succeeds with status already_published.
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.PublishResult
// @Router /admin/posts/{id}/publish [post]
func (s *Server) PublishPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.postService.Publish(c.UserContext(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// ArchivePost handles POST /api/admin/posts/:id/archive
func (s *Server) ArchivePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.Archive(c.UserContext(), middleware.ActorFromCtx(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": models.StatusArchived})
}
