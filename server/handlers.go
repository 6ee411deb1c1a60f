package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/Moe-Sakura/anime-search-api/constant"
	"github.com/Moe-Sakura/anime-search-api/log"
	"github.com/Moe-Sakura/anime-search-api/rules"
)

func (s *Server) handleInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    constant.App,
		"version": constant.Version,
		"rules":   len(s.store.Names()),
		"endpoints": []string{
			"POST /api",
			"GET /rules",
			"GET /update",
			"GET /health",
			"GET /bangumi/calendar",
			"GET /bangumi/subject/:id",
			"GET /bangumi/search",
		},
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "rules": len(s.store.Names())})
}

// handleSearch validates the form, selects the rules and streams per-rule
// results back as NDJSON lines.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.FormValue("anime"))
	if keyword == "" {
		return badRequest(c, "missing search keyword: form field 'anime'")
	}

	ruleNames := c.FormValue("rules")
	if strings.TrimSpace(ruleNames) == "" {
		return badRequest(c, "missing rule selection: form field 'rules'")
	}

	selected, err := s.store.Select(strings.Split(ruleNames, ","))
	if err != nil {
		var selErr *rules.SelectionError
		if errors.As(err, &selErr) || errors.Is(err, rules.ErrNoSelection) {
			return badRequest(c, err.Error())
		}
		return err
	}

	withEpisodes := isTruthy(c.FormValue("episodes"))

	log.Infof("search %q across %d rules (episodes=%t)", keyword, len(selected), withEpisodes)
	events := s.orchestrator.Stream(keyword, selected, withEpisodes)

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		encoder := json.NewEncoder(w)
		for event := range events {
			if err := encoder.Encode(event); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				// Client went away; drain so the searchers can finish.
				for range events {
				}
				return
			}
		}
	}))
	return nil
}

func (s *Server) handleRules(c *fiber.Ctx) error {
	return c.JSON(s.store.Find(c.Query("q")))
}

func (s *Server) handleUpdate(c *fiber.Ctx) error {
	result, err := s.updater.Update(isTruthy(c.Query("force")))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

func (s *Server) handleCalendar(c *fiber.Ctx) error {
	raw, err := s.bangumi.Calendar()
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return sendJSON(c, raw)
}

func (s *Server) handleSubject(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "subject id must be numeric")
	}

	raw, err := s.bangumi.Subject(id, bearerToken(c))
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return sendJSON(c, raw)
}

func (s *Server) handleMetaSearch(c *fiber.Ctx) error {
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		return badRequest(c, "missing search keyword: query parameter 'q'")
	}

	var (
		raw []byte
		err error
	)
	if isTruthy(c.Query("legacy")) {
		raw, err = s.bangumi.LegacySearch(keyword, bearerToken(c))
	} else {
		raw, err = s.bangumi.SearchSubjects(keyword, bearerToken(c))
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return sendJSON(c, raw)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func sendJSON(c *fiber.Ctx, raw []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(raw)
}

func bearerToken(c *fiber.Ctx) string {
	return strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
