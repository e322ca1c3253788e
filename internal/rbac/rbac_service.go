package rbac

import (
	"sync"

	"go-payway/internal/domain"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

const ResourceEmployee = "employee"

const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// DefaultPolicies grants the Admin role full control over employee records.
var DefaultPolicies = []domain.Permission{
	{Role: domain.RoleAdmin, Resource: ResourceEmployee, Action: ActionRead},
	{Role: domain.RoleAdmin, Resource: ResourceEmployee, Action: ActionCreate},
	{Role: domain.RoleAdmin, Resource: ResourceEmployee, Action: ActionUpdate},
	{Role: domain.RoleAdmin, Resource: ResourceEmployee, Action: ActionDelete},
}

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
	Permissions(role string) []domain.Permission
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, policies []domain.Permission, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	s := &service{enforcer: enforcer, logger: l}
	if err := s.load(policies); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) load(policies []domain.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()
	for _, p := range policies {
		if _, err := s.enforcer.AddPolicy(p.Role, p.Resource, p.Action); err != nil {
			return err
		}
	}
	s.logger.Info("rbac policy loaded", zap.Int("permissions", len(policies)))
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	if req.Role == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Permissions(role string) []domain.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()

	perms, err := s.enforcer.GetImplicitPermissionsForUser(role)
	if err != nil {
		return nil
	}
	out := make([]domain.Permission, 0, len(perms))
	for _, p := range perms {
		if len(p) < 3 {
			continue
		}
		out = append(out, domain.Permission{Role: p[0], Resource: p[1], Action: p[2]})
	}
	return out
}
