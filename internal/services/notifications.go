package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/harentsoaR/campus-api/internal/models"
)

const TextbeltURL = "https://textbelt.com/text"

// NotificationService sends SMS through the Textbelt API. Messages go out
// in the background so they never hold up an API response.
type NotificationService struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewNotificationService returns a notifier; with an empty apiKey it only
// logs what it would have sent.
func NewNotificationService(apiKey, endpoint string, logger *slog.Logger) *NotificationService {
	if endpoint == "" {
		endpoint = TextbeltURL
	}
	return &NotificationService{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// SendClassAssignmentSMS tells a teacher about a class they now instruct.
func (s *NotificationService) SendClassAssignmentSMS(teacher *models.Teacher, class *models.Class) {
	if teacher.PhoneNumber == "" {
		s.logger.Info("SMS not sent: teacher has no phone number", "teacher", teacher.ID.Hex())
		return
	}
	if s.apiKey == "" {
		s.logger.Info("SMS disabled, skipping class assignment notice", "teacher", teacher.ID.Hex(), "class", class.ID.Hex())
		return
	}

	smsBody := fmt.Sprintf(
		"Hello %s, you have been assigned to class %s (batch %d). Enrollment key: %s.",
		teacher.FullName,
		class.Name,
		class.Batch,
		class.EnrollmentKey,
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.send(ctx, teacher.PhoneNumber, smsBody); err != nil {
			s.logger.Warn("failed to send SMS", "phone", teacher.PhoneNumber, "error", err)
			return
		}
		s.logger.Info("sent SMS", "phone", teacher.PhoneNumber)
	}()
}

// Wait blocks until every pending message has been attempted.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) send(ctx context.Context, phone, message string) error {
	postBody, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(postBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding textbelt response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected message: %s", result.Error)
	}
	return nil
}
