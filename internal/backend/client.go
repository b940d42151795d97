// Package backend implements the domain.Backend port over the platform's
// REST API. The API is an opaque collaborator: any non-success status is a
// uniform operation failure, and response bodies are trusted as-is beyond
// presence checks.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"eduassess/internal/domain"
	"eduassess/internal/dto"
	"eduassess/internal/logger"
)

// Client is the HTTP implementation of domain.Backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client for the given base URL. A zero timeout
// leaves the transport unbounded; hung calls are the collaborator's problem
// to bound, not ours.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL cannot be empty")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	req := dto.LoginRequest{Email: creds.Email, Department: creds.Department, Password: creds.Password}
	var resp dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, domain.NewBackendFailureError("login", fmt.Errorf("incomplete auth response"))
	}
	return &domain.AuthResult{Token: resp.AccessToken, User: resp.User.ToDomain()}, nil
}

func (c *Client) Signup(ctx context.Context, input domain.SignupInput) (*domain.User, error) {
	req := dto.SignupRequest{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		Department: input.Department,
		RollNo:     input.RollNo,
		Age:        input.Age,
	}
	var resp dto.UserPayload
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return nil, err
	}
	return resp.ToDomain(), nil
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var resp dto.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, domain.NewBackendFailureError("fetch current user", fmt.Errorf("empty user in response"))
	}
	return resp.User.ToDomain(), nil
}

func (c *Client) GenerateQuiz(ctx context.Context, token string, prompt string, cfg domain.QuizConfig) ([]domain.Question, error) {
	req := dto.GenerateQuizRequest{Prompt: prompt, Config: dto.ConfigPayloadFromDomain(cfg)}
	var resp dto.GenerateQuizResponse
	if err := c.do(ctx, http.MethodPost, "/quiz/generate", token, req, &resp); err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		questions = append(questions, q.ToDomain())
	}
	return questions, nil
}

func (c *Client) SubmitQuiz(ctx context.Context, token string, submission domain.QuizSubmission) (*domain.SubmitReceipt, error) {
	req := dto.SubmitQuizRequest{UserID: submission.UserID}
	for _, a := range submission.Answers {
		req.Answers = append(req.Answers, dto.AnswerPayloadFromDomain(a))
	}
	for _, q := range submission.Questions {
		req.Questions = append(req.Questions, dto.QuestionPayloadFromDomain(q))
	}

	var resp dto.SubmitQuizResponse
	if err := c.do(ctx, http.MethodPost, "/quiz/submit", token, req, &resp); err != nil {
		return nil, err
	}

	perf := make(map[domain.SkillType]domain.SkillTally, len(resp.SkillPerformance))
	for skill, tally := range resp.SkillPerformance {
		perf[domain.NormalizeSkillType(skill)] = domain.SkillTally{Correct: tally.Correct, Total: tally.Total}
	}
	return &domain.SubmitReceipt{
		SubmissionID:     resp.SubmissionID,
		Score:            resp.Score,
		CorrectAnswers:   resp.CorrectAnswers,
		TotalQuestions:   resp.TotalQuestions,
		SkillPerformance: perf,
		Strengths:        resp.Strengths,
		Weaknesses:       resp.Weaknesses,
		Status:           domain.ReviewStatus(resp.Status),
	}, nil
}

func (c *Client) QuizHistory(ctx context.Context, token string) ([]domain.Submission, error) {
	var resp dto.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/quiz/history", token, nil, &resp); err != nil {
		return nil, err
	}
	return toSubmissions(resp.Results), nil
}

func (c *Client) AllSubmissions(ctx context.Context, token string) ([]domain.Submission, error) {
	var resp dto.AllSubmissionsResponse
	if err := c.do(ctx, http.MethodGet, "/quiz/all-submissions", token, nil, &resp); err != nil {
		return nil, err
	}
	return toSubmissions(resp.Submissions), nil
}

func (c *Client) AddTeacherComment(ctx context.Context, token, submissionID, comments string) error {
	req := dto.TeacherCommentRequest{SubmissionID: submissionID, Comments: comments}
	return c.do(ctx, http.MethodPost, "/quiz/teacher-comment", token, req, nil)
}

func (c *Client) SubmitReview(ctx context.Context, token, submissionID string) (*domain.ReviewOutcome, error) {
	var resp dto.ReviewResponse
	path := "/quiz/teacher-submit/" + submissionID
	if err := c.do(ctx, http.MethodPost, path, token, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.ReviewOutcome{Recommendations: resp.Recommendations, Explanation: resp.Explanation}, nil
}

func (c *Client) SubmitReviewBulk(ctx context.Context, token string, submissionIDs []string) (*domain.BulkReviewOutcome, error) {
	req := dto.BulkSubmitRequest{SubmissionIDs: submissionIDs}
	var resp dto.BulkReviewResponse
	if err := c.do(ctx, http.MethodPost, "/quiz/teacher-submit-bulk", token, req, &resp); err != nil {
		return nil, err
	}
	return &domain.BulkReviewOutcome{Processed: resp.Processed, Failed: resp.Failed}, nil
}

func toSubmissions(payloads []dto.SubmissionPayload) []domain.Submission {
	submissions := make([]domain.Submission, 0, len(payloads))
	for _, p := range payloads {
		submissions = append(submissions, p.ToDomain())
	}
	return submissions
}

// do executes one JSON round trip. A non-2xx status becomes a uniform
// backend-failure error carrying the server's detail message when present.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.NewInternalError("failed to encode request", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return domain.NewInternalError("failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Get().Warn("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return domain.NewBackendFailureError(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		logger.Get().Warn("Backend returned non-success status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", errBody.Detail))
		if resp.StatusCode == http.StatusUnauthorized {
			return domain.NewUnauthorizedError("session is no longer valid")
		}
		detail := errBody.Detail
		if detail == "" {
			detail = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return domain.NewBackendFailureError(method+" "+path, fmt.Errorf("%s", detail))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewBackendFailureError(method+" "+path, fmt.Errorf("malformed response: %w", err))
	}
	return nil
}

// Static assertion that Client satisfies the port
var _ domain.Backend = (*Client)(nil)
