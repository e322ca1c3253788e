package employee

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	employeeerrors "go-payway/internal/employee/errors"
	"go-payway/internal/events"
	"go-payway/internal/messaging/kafka"
	"go-payway/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	EmployeeListCacheKey = "employees:all"
	// EmployeeListGenKey is bumped after every committed write. A cached list
	// is only served while its generation matches.
	EmployeeListGenKey = "employees:gen"
)

type listCacheEntry struct {
	Generation string     `json:"generation"`
	Employees  []Employee `json:"employees"`
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id uint) (*Employee, error)
	Create(ctx context.Context, empl *Employee) error
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, id uint) error
}

type service struct {
	db       *gorm.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	rdb      *redis.Client
	cacheTTL time.Duration
	sf       *singleflight.Group
	writes   atomic.Uint64
	logger   *zap.Logger
}

// NewService wires the employee service. outboxRepo and rdb are optional:
// without them no lifecycle events are queued and the list is not cached.
func NewService(
	db *gorm.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		outbox:   outboxRepo,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		sf:       &singleflight.Group{},
		logger:   l,
	}
}

func (s *service) GetAll(ctx context.Context) ([]Employee, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("get all employees requested")

	gen, cacheable := "", false
	if s.rdb != nil {
		vals, err := s.rdb.MGet(ctx, EmployeeListGenKey, EmployeeListCacheKey).Result()
		if err != nil {
			l.Warn("read employee list cache failed", zap.Error(err))
		} else {
			gen, cacheable = "0", true
			if v, ok := vals[0].(string); ok {
				gen = v
			}
			if cached, ok := vals[1].(string); ok {
				var entry listCacheEntry
				if json.Unmarshal([]byte(cached), &entry) == nil && entry.Generation == gen {
					return entry.Employees, nil
				}
			}
		}
	}

	// Callers arriving after a write never join a flight that started before it.
	flightKey := fmt.Sprintf("%s:%s:%d", EmployeeListCacheKey, gen, s.writes.Load())
	v, err, _ := s.sf.Do(flightKey, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)

		empls, err := s.repo.FindAll(flightCtx)
		if err != nil {
			l.Error("get all employees failed", zap.Error(err))
			return nil, mapRepositoryError(err)
		}

		if cacheable {
			data, err := json.Marshal(listCacheEntry{Generation: gen, Employees: empls})
			if err == nil {
				err = s.rdb.Set(flightCtx, EmployeeListCacheKey, data, s.cacheTTL).Err()
			}
			if err != nil {
				l.Warn("cache employee list failed", zap.Error(err))
			}
		}

		return empls, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]Employee), nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*Employee, error) {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("get employee by id requested", zap.Uint("employee_id", id))

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		mapped := mapRepositoryError(err)
		if !errors.Is(mapped, employeeerrors.ErrEmployeeNotFound) {
			l.Error("get employee by id failed", zap.Uint("employee_id", id), zap.Error(err))
		}
		return nil, mapped
	}
	return empl, nil
}

func (s *service) Create(ctx context.Context, empl *Employee) error {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("create employee requested",
		zap.String("employee_no", empl.EmployeeNo),
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
			l.Error("create employee persist failed", zap.Error(err))
			return mapRepositoryError(err)
		}
		return s.enqueue(ctx, tx, events.EmployeeCreated, empl.ID, empl.EmployeeNo)
	})
	if err != nil {
		return err
	}

	s.invalidateList(ctx)
	l.Info("create employee success", zap.Uint("employee_id", empl.ID))
	return nil
}

func (s *service) Update(ctx context.Context, empl *Employee) error {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("update employee requested",
		zap.Uint("employee_id", empl.ID),
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, empl); err != nil {
			l.Error("update employee persist failed", zap.Error(err))
			return mapRepositoryError(err)
		}
		return s.enqueue(ctx, tx, events.EmployeeUpdated, empl.ID, empl.EmployeeNo)
	})
	if err != nil {
		return err
	}

	s.invalidateList(ctx)
	l.Info("update employee success", zap.Uint("employee_id", empl.ID))
	return nil
}

// Delete removes the employee if present. Deleting an unknown id succeeds
// without queuing an event.
func (s *service) Delete(ctx context.Context, id uint) error {
	l := contextutil.GetLogger(ctx, s.logger)
	l.Debug("delete employee requested",
		zap.Uint("employee_id", id),
	)

	var removed int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).Delete(ctx, id)
		if err != nil {
			l.Error("delete employee failed", zap.Error(err))
			return mapRepositoryError(err)
		}
		removed = n
		if n == 0 {
			return nil
		}
		return s.enqueue(ctx, tx, events.EmployeeDeleted, id, "")
	})
	if err != nil {
		return err
	}

	if removed == 0 {
		l.Info("delete employee skipped, not found", zap.Uint("employee_id", id))
		return nil
	}

	s.invalidateList(ctx)
	l.Info("delete employee success", zap.Uint("employee_id", id))
	return nil
}

func (s *service) enqueue(ctx context.Context, tx *gorm.DB, eventType string, id uint, employeeNo string) error {
	if s.outbox == nil {
		return nil
	}

	l := contextutil.GetLogger(ctx, s.logger)

	rid := contextutil.GetRequestID(ctx)
	event := events.EmployeeLifecycleEvent{
		EventType:  eventType,
		RequestID:  rid,
		EmployeeID: id,
		EmployeeNo: employeeNo,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		l.Error("marshal event failed", zap.Error(err))
		return err
	}

	aggregateID := strconv.FormatUint(uint64(id), 10)
	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "employee",
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         events.EmployeeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		l.Error("employee outbox persist failed",
			zap.String("event_type", eventType),
			zap.String("employee_id", aggregateID),
			zap.Error(err),
		)
		return err
	}

	l.Info("employee outbox queued",
		zap.String("event_type", eventType),
		zap.String("employee_id", aggregateID),
	)
	return nil
}

// invalidateList runs after a write has committed. Bumping the generation
// orphans any list filled from a read that started before the write.
func (s *service) invalidateList(ctx context.Context) {
	s.writes.Add(1)
	if s.rdb == nil {
		return
	}

	l := contextutil.GetLogger(ctx, s.logger)
	if err := s.rdb.Incr(ctx, EmployeeListGenKey).Err(); err != nil {
		l.Error("failed to bump employee list generation",
			zap.Error(err),
			zap.String("key", EmployeeListGenKey),
		)
	}
	if err := s.rdb.Del(ctx, EmployeeListCacheKey).Err(); err != nil {
		l.Error("failed to invalidate employee list cache",
			zap.Error(err),
			zap.String("key", EmployeeListCacheKey),
		)
	}
}
