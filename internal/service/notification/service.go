package notification

import (
	"context"
	"fmt"

	"github.com/asistia/care-api/internal/email"
	"github.com/asistia/care-api/internal/repository"
	"github.com/asistia/care-api/pkg/logger"
)

// Service sends courtesy emails to users affected by assignment
// changes. Delivery is best-effort: failures are logged and never
// surfaced to the operation that triggered them.
type Service struct {
	sender email.Sender
	users  repository.UserRepository
	logger *logger.Logger
}

func NewService(sender email.Sender, users repository.UserRepository, logger *logger.Logger) *Service {
	return &Service{sender: sender, users: users, logger: logger}
}

// NotifyCaregiverAssigned tells a caregiver they were granted access to
// a patient's records.
func (s *Service) NotifyCaregiverAssigned(ctx context.Context, caregiverID int64, patientName string) {
	if s.sender == nil {
		return
	}

	user, err := s.users.GetByID(ctx, caregiverID)
	if err != nil || user == nil {
		s.logger.Error(err, "failed to load caregiver for notification", "caregiver_id", caregiverID)
		return
	}

	subject := "Nueva asignación de paciente"
	body := fmt.Sprintf("Hola %s,\n\nSe le ha asignado el cuidado del paciente %s. Ya puede consultar sus registros en la plataforma.\n", user.Name, patientName)

	if err := s.sender.Send(user.Email, subject, body); err != nil {
		s.logger.Error(err, "failed to send assignment notification", "caregiver_id", caregiverID)
	}
}
