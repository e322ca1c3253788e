package employee_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-payway/internal/employee"
	employeeerrors "go-payway/internal/employee/errors"
	employeeMock "go-payway/internal/employee/mock"
	"go-payway/internal/events"
	"go-payway/internal/messaging/kafka"
	kafkaMock "go-payway/internal/messaging/kafka/mock"
	"go-payway/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const cacheTTL = 10 * time.Minute

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	redismock redismock.ClientMock
}

func openGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, sqlMock
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	gdb, sqlMock := openGorm(t)
	rdb, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	svc := employee.NewService(gdb, repo, outboxRepo, rdb, cacheTTL)

	return &serviceDeps{
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		outbox:    outboxRepo,
		redismock: redisMock,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

// outboxEventMatcher checks the lifecycle event written next to the row.
type outboxEventMatcher struct {
	eventType  string
	employeeID string
	requestID  string
}

func (m outboxEventMatcher) Matches(x any) bool {
	ev, ok := x.(kafka.OutboxEvent)
	if !ok {
		return false
	}
	var payload events.EmployeeLifecycleEvent
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return false
	}
	return ev.EventType == m.eventType &&
		ev.Topic == events.EmployeeLifecycleTopic &&
		ev.AggregateType == "employee" &&
		ev.AggregateID == m.employeeID &&
		ev.RequestID == m.requestID &&
		ev.Status == kafka.OutboxStatusPending &&
		payload.EventType == m.eventType &&
		payload.RequestID == m.requestID
}

func (m outboxEventMatcher) String() string {
	return "outbox event " + m.eventType + " for employee " + m.employeeID
}

// cachedList mirrors the json layout of a cached employee list.
func cachedList(t *testing.T, gen string, list []employee.Employee) []byte {
	t.Helper()
	data, err := json.Marshal(struct {
		Generation string              `json:"generation"`
		Employees  []employee.Employee `json:"employees"`
	}{gen, list})
	require.NoError(t, err)
	return data
}

func TestEmployeeService_GetAll(t *testing.T) {
	ctx := context.Background()
	list := []employee.Employee{
		{ID: 1, EmployeeNo: "EMP-001", FullName: "Ann Lee"},
		{ID: 2, EmployeeNo: "EMP-002", FullName: "Bob Ray"},
	}
	cacheKeys := []string{employee.EmployeeListGenKey, employee.EmployeeListCacheKey}

	t.Run("cache miss fills cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectMGet(cacheKeys...).SetVal([]interface{}{nil, nil})
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(list, nil)
		deps.redismock.ExpectSet(employee.EmployeeListCacheKey, cachedList(t, "0", list), cacheTTL).SetVal("OK")

		got, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, list, got)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache hit skips repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectMGet(cacheKeys...).SetVal([]interface{}{"5", string(cachedList(t, "5", list))})

		got, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, list, got)
	})

	t.Run("older generation is refilled", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectMGet(cacheKeys...).SetVal([]interface{}{"6", string(cachedList(t, "5", list))})
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(list[1:], nil)
		deps.redismock.ExpectSet(employee.EmployeeListCacheKey, cachedList(t, "6", list[1:]), cacheTTL).SetVal("OK")

		got, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, list[1:], got)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("delete committed during fill is not served afterwards", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectMGet(cacheKeys...).SetVal([]interface{}{"3", nil})

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(gomock.Any(), uint(1)).Return(int64(1), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(gomock.Any(), outboxEventMatcher{eventType: events.EmployeeDeleted, employeeID: "1"}).
			Return(nil)
		deps.redismock.ExpectIncr(employee.EmployeeListGenKey).SetVal(4)
		deps.redismock.ExpectDel(employee.EmployeeListCacheKey).SetVal(0)

		// The first read loaded its rows before the delete committed.
		deps.repo.EXPECT().
			FindAll(gomock.Any()).
			DoAndReturn(func(ctx context.Context) ([]employee.Employee, error) {
				require.NoError(t, deps.service.Delete(context.Background(), 1))
				return list, nil
			})
		stale := cachedList(t, "3", list)
		deps.redismock.ExpectSet(employee.EmployeeListCacheKey, stale, cacheTTL).SetVal("OK")

		deps.redismock.ExpectMGet(cacheKeys...).SetVal([]interface{}{"4", string(stale)})
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(list[1:], nil)
		deps.redismock.ExpectSet(employee.EmployeeListCacheKey, cachedList(t, "4", list[1:]), cacheTTL).SetVal("OK")

		first, err := deps.service.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, first, 2)

		got, err := deps.service.GetAll(ctx)
		require.NoError(t, err)

		ids := make([]uint, 0, len(got))
		for _, e := range got {
			ids = append(ids, e.ID)
		}
		assert.NotContains(t, ids, uint(1))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("redis error falls back to repository without caching", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectMGet(cacheKeys...).SetErr(errors.New("redis down"))
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(list, nil)

		got, err := deps.service.GetAll(ctx)

		assert.NoError(t, err)
		assert.Equal(t, list, got)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("canceled caller does not cancel shared query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gdb, _ := openGorm(t)
		repo := employeeMock.NewMockRepository(ctrl)
		svc := employee.NewService(gdb, repo, nil, nil, cacheTTL)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		repo.EXPECT().
			FindAll(gomock.Any()).
			DoAndReturn(func(ctx context.Context) ([]employee.Employee, error) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return list, nil
			})

		got, err := svc.GetAll(canceled)

		assert.NoError(t, err)
		assert.Equal(t, list, got)
	})

	t.Run("logs through request logger", func(t *testing.T) {
		deps := setupServiceTest(t)
		core, logs := observer.New(zap.DebugLevel)
		reqCtx := contextutil.WithLogger(ctx, zap.New(core).With(zap.String("request_id", "REQ-9")))
		deps.redismock.ExpectMGet(cacheKeys...).SetVal([]interface{}{"1", string(cachedList(t, "1", list))})

		_, err := deps.service.GetAll(reqCtx)

		require.NoError(t, err)
		entries := logs.FilterMessage("get all employees requested").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "REQ-9", entries[0].ContextMap()["request_id"])
	})

	t.Run("repository error", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectMGet(cacheKeys...).SetVal([]interface{}{nil, nil})
		deps.repo.EXPECT().FindAll(gomock.Any()).Return(nil, errors.New("db down"))

		got, err := deps.service.GetAll(ctx)

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, uint(3)).Return(&employee.Employee{ID: 3, FullName: "Ann Lee"}, nil)

		got, err := deps.service.GetByID(ctx, 3)

		assert.NoError(t, err)
		assert.Equal(t, "Ann Lee", got.FullName)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByID(ctx, uint(404)).Return(&employee.Employee{}, gorm.ErrRecordNotFound)

		got, err := deps.service.GetByID(ctx, 404)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
		assert.Nil(t, got)
	})
}

func TestEmployeeService_Create(t *testing.T) {
	t.Run("success - persists outbox with request id", func(t *testing.T) {
		deps := setupServiceTest(t)
		rid := "REQ-123-ABC"
		ctx := contextutil.WithRequestID(context.Background(), rid)
		empl := &employee.Employee{EmployeeNo: "EMP-010", FullName: "Ann Lee"}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, empl).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				e.ID = 42
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(gomock.Any(), outboxEventMatcher{eventType: events.EmployeeCreated, employeeID: "42", requestID: rid}).
			Return(nil)
		deps.redismock.ExpectIncr(employee.EmployeeListGenKey).SetVal(1)
		deps.redismock.ExpectDel(employee.EmployeeListCacheKey).SetVal(1)

		err := deps.service.Create(ctx, empl)

		assert.NoError(t, err)
		assert.Equal(t, uint(42), empl.ID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("duplicate employee number -> rollback", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_no"})

		err := deps.service.Create(ctx, &employee.Employee{EmployeeNo: "EMP-010"})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNumberAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("outbox error -> rollback", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("outbox down"))

		err := deps.service.Create(ctx, &employee.Employee{EmployeeNo: "EMP-011"})

		assert.EqualError(t, err, "outbox down")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("without outbox or cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gdb, sqlMock := openGorm(t)
		repo := employeeMock.NewMockRepository(ctrl)
		svc := employee.NewService(gdb, repo, nil, nil, cacheTTL)
		ctx := context.Background()

		expectTx(t, sqlMock, true)
		repo.EXPECT().WithTx(gomock.Any()).Return(repo)
		repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		assert.NoError(t, svc.Create(ctx, &employee.Employee{EmployeeNo: "EMP-012"}))
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		empl := &employee.Employee{ID: 5, EmployeeNo: "EMP-005"}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Update(ctx, empl).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(gomock.Any(), outboxEventMatcher{eventType: events.EmployeeUpdated, employeeID: "5"}).
			Return(nil)
		deps.redismock.ExpectIncr(employee.EmployeeListGenKey).SetVal(1)
		deps.redismock.ExpectDel(employee.EmployeeListCacheKey).SetVal(1)

		err := deps.service.Update(ctx, empl)

		assert.NoError(t, err)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("duplicate email -> rollback", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_email"})

		err := deps.service.Update(ctx, &employee.Employee{ID: 5})

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("untyped driver error is not mapped", func(t *testing.T) {
		deps := setupServiceTest(t)
		dbErr := errors.New(`ERROR: duplicate key value violates unique constraint "uq_employee_email"`)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(dbErr)

		err := deps.service.Update(ctx, &employee.Employee{ID: 5})

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, employeeerrors.ErrEmployeeAlreadyExists)
	})
}

func TestEmployeeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing employee", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(ctx, uint(9)).Return(int64(1), nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(gomock.Any(), outboxEventMatcher{eventType: events.EmployeeDeleted, employeeID: "9"}).
			Return(nil)
		deps.redismock.ExpectIncr(employee.EmployeeListGenKey).SetVal(1)
		deps.redismock.ExpectDel(employee.EmployeeListCacheKey).SetVal(1)

		assert.NoError(t, deps.service.Delete(ctx, 9))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(ctx, uint(404)).Return(int64(0), nil)

		assert.NoError(t, deps.service.Delete(ctx, 404))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("repository error -> rollback", func(t *testing.T) {
		deps := setupServiceTest(t)

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Delete(ctx, uint(9)).Return(int64(0), errors.New("db error"))

		assert.Error(t, deps.service.Delete(ctx, 9))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}
