// Package stubserver exposes the stub backend over the same HTTP contract
// the real platform backend speaks, so the client can be pointed at
// localhost during development. It is not part of the production surface.
package stubserver

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"eduassess/internal/config"
	"eduassess/internal/domain"
	"eduassess/internal/dto"
	"eduassess/internal/logger"
	"eduassess/internal/stub"
	"eduassess/internal/validation"
)

const userIDKey = "userID"

// Server wires the stub store behind the documented REST endpoints.
type Server struct {
	store     *stub.Store
	issuer    *TokenIssuer
	validator *validation.Validator
}

// New creates the server around the given store.
func New(cfg config.StubServerConfig, store *stub.Store) *Server {
	return &Server{
		store:     store,
		issuer:    NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL),
		validator: validation.NewValidator(),
	}
}

// App builds the Fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "eduassess-stub",
		DisableStartupMessage: true,
	})

	auth := app.Group("/auth")
	auth.Post("/signup", s.handleSignup)
	auth.Post("/login", s.handleLogin)
	auth.Get("/me", s.protected, s.handleMe)

	quiz := app.Group("/quiz", s.protected)
	quiz.Post("/generate", s.handleGenerate)
	quiz.Post("/submit", s.handleSubmit)
	quiz.Get("/history", s.handleHistory)
	quiz.Get("/all-submissions", s.requireTeacher, s.handleAllSubmissions)
	quiz.Post("/teacher-comment", s.requireTeacher, s.handleTeacherComment)
	quiz.Post("/teacher-submit/:id", s.requireTeacher, s.handleTeacherSubmit)
	quiz.Post("/teacher-submit-bulk", s.requireTeacher, s.handleTeacherSubmitBulk)

	return app
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	input := domain.SignupInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		RollNo:     req.RollNo,
		Age:        req.Age,
	}
	if errs := s.validator.ValidateSignup(input); len(errs) > 0 {
		return detail(c, fiber.StatusBadRequest, errs.Error())
	}

	user, err := s.store.CreateUser(input)
	if err != nil {
		return domainDetail(c, err)
	}
	return c.JSON(dto.UserPayloadFromDomain(user))
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		return domainDetail(c, err)
	}
	return s.respondWithToken(c, user)
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return domainDetail(c, err)
	}
	return c.JSON(dto.MeResponse{User: dto.UserPayloadFromDomain(user)})
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	questions := s.store.Generate(req.Config.ToDomain())
	payloads := make([]dto.QuestionPayload, 0, len(questions))
	for _, q := range questions {
		payloads = append(payloads, dto.QuestionPayloadFromDomain(q))
	}
	return c.JSON(dto.GenerateQuizResponse{
		Success:   true,
		QuizID:    ulid.Make().String(),
		Questions: payloads,
	})
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	var req dto.SubmitQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	answers := make([]domain.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, a.ToDomain())
	}
	questions := make([]domain.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, q.ToDomain())
	}

	// The token, not the request body, names the submitting user.
	sub, err := s.store.Submit(c.Locals(userIDKey).(string), answers, questions)
	if err != nil {
		return domainDetail(c, err)
	}

	perf := make(map[string]dto.SkillTallyPayload, len(sub.SkillPerformance))
	for skill, tally := range sub.SkillPerformance {
		perf[string(skill)] = dto.SkillTallyPayload{Correct: tally.Correct, Total: tally.Total}
	}
	return c.JSON(dto.SubmitQuizResponse{
		Success:          true,
		SubmissionID:     sub.ID,
		Score:            sub.Score,
		CorrectAnswers:   sub.CorrectAnswers,
		TotalQuestions:   sub.TotalQuestions,
		SkillPerformance: perf,
		Strengths:        sub.Strengths,
		Weaknesses:       sub.Weaknesses,
		Status:           string(sub.Status),
		Message:          "Quiz submitted for teacher review",
	})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	history := s.store.HistoryFor(c.Locals(userIDKey).(string))
	return c.JSON(dto.HistoryResponse{
		Success: true,
		Results: submissionPayloads(history),
	})
}

func (s *Server) handleAllSubmissions(c *fiber.Ctx) error {
	return c.JSON(dto.AllSubmissionsResponse{
		Success:     true,
		Submissions: submissionPayloads(s.store.All()),
	})
}

func (s *Server) handleTeacherComment(c *fiber.Ctx) error {
	var req dto.TeacherCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	teacher, err := s.currentUser(c)
	if err != nil {
		return domainDetail(c, err)
	}
	if err := s.store.Comment(req.SubmissionID, req.Comments, teacher.Name); err != nil {
		return domainDetail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Comment added successfully"})
}

func (s *Server) handleTeacherSubmit(c *fiber.Ctx) error {
	teacher, err := s.currentUser(c)
	if err != nil {
		return domainDetail(c, err)
	}

	outcome, err := s.store.Review(c.Params("id"), teacher.Name)
	if err != nil {
		return domainDetail(c, err)
	}
	return c.JSON(dto.ReviewResponse{
		Success:         true,
		Message:         "Quiz submitted successfully with recommendations",
		Recommendations: outcome.Recommendations,
		Explanation:     outcome.Explanation,
	})
}

func (s *Server) handleTeacherSubmitBulk(c *fiber.Ctx) error {
	var req dto.BulkSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	teacher, err := s.currentUser(c)
	if err != nil {
		return domainDetail(c, err)
	}
	outcome := s.store.ReviewBulk(req.SubmissionIDs, teacher.Name)
	return c.JSON(dto.BulkReviewResponse{
		Success:   true,
		Processed: outcome.Processed,
		Failed:    outcome.Failed,
	})
}

// protected requires a valid bearer token and stores the user id in locals.
func (s *Server) protected(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return detail(c, fiber.StatusUnauthorized, "Authorization header is missing")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return detail(c, fiber.StatusUnauthorized, "Authorization scheme is not Bearer")
	}

	userID, err := s.issuer.Validate(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		logger.Get().Debug("Token validation failed", zap.Error(err))
		return detail(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	c.Locals(userIDKey, userID)
	return c.Next()
}

func (s *Server) requireTeacher(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return domainDetail(c, err)
	}
	if !user.Roles.Has(domain.RoleTeacher) {
		return detail(c, fiber.StatusForbidden, "Access denied. Teachers only.")
	}
	return c.Next()
}

func (s *Server) currentUser(c *fiber.Ctx) (*domain.User, error) {
	userID, _ := c.Locals(userIDKey).(string)
	return s.store.UserByID(userID)
}

func (s *Server) respondWithToken(c *fiber.Ctx, user *domain.User) error {
	token, err := s.issuer.Mint(user.ID)
	if err != nil {
		logger.Get().Error("Failed to mint access token", zap.Error(err))
		return detail(c, fiber.StatusInternalServerError, "Failed to create session")
	}
	return c.JSON(dto.LoginResponse{
		User:        dto.UserPayloadFromDomain(user),
		AccessToken: token,
	})
}

func submissionPayloads(subs []domain.Submission) []dto.SubmissionPayload {
	out := make([]dto.SubmissionPayload, 0, len(subs))
	for _, sub := range subs {
		out = append(out, dto.SubmissionPayloadFromDomain(sub))
	}
	return out
}

func detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Detail: message})
}

// domainDetail maps a domain error to the FastAPI-style error body.
func domainDetail(c *fiber.Ctx, err error) error {
	var derr *domain.DomainError
	if !errors.As(err, &derr) {
		return detail(c, fiber.StatusInternalServerError, err.Error())
	}
	switch derr.Code {
	case domain.CodeUnauthorized:
		return detail(c, fiber.StatusUnauthorized, derr.Message)
	case domain.CodeForbidden:
		return detail(c, fiber.StatusForbidden, derr.Message)
	case domain.CodeNotFound:
		return detail(c, fiber.StatusNotFound, derr.Message)
	case domain.CodeValidation:
		return detail(c, fiber.StatusBadRequest, derr.Message)
	default:
		return detail(c, fiber.StatusInternalServerError, derr.Message)
	}
}
