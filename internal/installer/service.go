package installer

import (
	"fmt"

	"github.com/kardianos/service"
	log "github.com/sirupsen/logrus"
)

// ServiceController starts and stops the OS service that owns the
// install directory.
type ServiceController interface {
	Stop() error
	Start() error
}

// program satisfies service.Interface. hoist only controls the
// application's service, it never runs as the service itself.
type program struct{}

func (program) Start(service.Service) error { return nil }
func (program) Stop(service.Service) error  { return nil }

// SystemService controls a named host service through the platform
// service manager.
type SystemService struct {
	name string
}

func NewSystemService(name string) *SystemService {
	return &SystemService{name: name}
}

func (s *SystemService) svc() (service.Service, error) {
	return service.New(program{}, &service.Config{Name: s.name})
}

// Stop stops the service. A service the host already reports as stopped
// is a no-op.
func (s *SystemService) Stop() error {
	svc, err := s.svc()
	if err != nil {
		return fmt.Errorf("open service %s: %w", s.name, err)
	}

	if status, err := svc.Status(); err == nil && status == service.StatusStopped {
		log.Infof("service %s is already stopped", s.name)
		return nil
	}

	if err := svc.Stop(); err != nil {
		return fmt.Errorf("stop service %s: %w", s.name, err)
	}
	return nil
}

// Start starts the service. A service the host already reports as
// running is a no-op.
func (s *SystemService) Start() error {
	svc, err := s.svc()
	if err != nil {
		return fmt.Errorf("open service %s: %w", s.name, err)
	}

	if status, err := svc.Status(); err == nil && status == service.StatusRunning {
		log.Infof("service %s is already running", s.name)
		return nil
	}

	if err := svc.Start(); err != nil {
		return fmt.Errorf("start service %s: %w", s.name, err)
	}
	return nil
}

// Status reports the host's view of the service state.
func (s *SystemService) Status() (service.Status, error) {
	svc, err := s.svc()
	if err != nil {
		return service.StatusUnknown, fmt.Errorf("open service %s: %w", s.name, err)
	}
	return svc.Status()
}
