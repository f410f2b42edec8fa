package server

import (
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// callerFrom returns the signed-in user, or nil for anonymous requests.
func callerFrom(c *fiber.Ctx) *models.User {
	return middleware.CurrentUser(c)
}

// parsePage reads ?page=; anything but a positive integer means the first page.
func parsePage(c *fiber.Ctx) int {
	return service.ParsePageNumber(c.Query("page"))
}

// parseID extracts a route parameter as a positive uint. A malformed id is
// reported as not found, the same as an id that does not exist.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// usernameParam returns the decoded :username route parameter.
func usernameParam(c *fiber.Ctx) string {
	raw := c.Params("username")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// parseGroupID reads the optional group select. Empty means no group; a
// value that is not a number can never match a group, so it maps to id 0.
func parseGroupID(raw string) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		id = 0
	}
	v := uint(id)
	return &v
}

// readUpload returns the bytes of an uploaded file field, or nil when the
// field was not submitted at all.
func readUpload(c *fiber.Ctx, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, err
	}
	if header.Filename == "" && header.Size == 0 {
		return nil, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// safeNext accepts only same-site absolute paths as a post-login destination.
// Browsers drop tabs and newlines from URLs, so any control character is
// rejected before it can turn "/\t/host" into "//host".
func safeNext(next string) string {
	if next == "" || strings.ContainsFunc(next, func(r rune) bool { return r < 0x20 || r == 0x7f || r == '\\' }) {
		return "/"
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}
	return next
}

func profileURL(username string) string {
	return "/" + url.PathEscape(username)
}

func postURL(username string, postID uint) string {
	return profileURL(username) + "/" + strconv.FormatUint(uint64(postID), 10)
}
