package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/opspulse/workmon/internal/domain"
)

// ActivityQuery is the tagged request shape for the read path. It is
// validated at the boundary before any resolution happens.
type ActivityQuery struct {
	TargetUserID     string `validate:"omitempty,max=128"`
	DepartmentFilter string `validate:"omitempty,max=128"`
	Limit            int    `validate:"min=0,max=100"`
}

// QueryResult is what a viewer gets back: the filtered records and the
// scope label their role resolved to.
type QueryResult struct {
	Records []domain.ActivityRecord
	Scope   domain.AccessScope
}

// ErrAccessDenied reports a denied query. It carries the resolved scope so
// callers can explain the denial without leaking the target set.
type ErrAccessDenied struct {
	Scope domain.AccessScope
}

func (e *ErrAccessDenied) Error() string {
	return fmt.Sprintf("access denied (scope %s)", e.Scope)
}

// QueryService orchestrates the read path: validate, resolve scope, fetch,
// then filter each record against its subject's consent.
type QueryService struct {
	resolver *Resolver
	filter   *Filter
	policies domain.PolicyStore
	reader   domain.ActivityReader
	validate *validator.Validate
	logger   *zap.Logger
}

// NewQueryService wires the governance read path.
func NewQueryService(resolver *Resolver, filter *Filter, policies domain.PolicyStore, reader domain.ActivityReader, logger *zap.Logger) *QueryService {
	return &QueryService{
		resolver: resolver,
		filter:   filter,
		policies: policies,
		reader:   reader,
		validate: validator.New(),
		logger:   logger,
	}
}

// Query returns the records the requester may see. Invalid requests and
// unknown roles fail before any data is touched.
func (s *QueryService) Query(ctx context.Context, requester domain.Requester, q ActivityQuery) (*QueryResult, error) {
	if !requester.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", requester.Role)
	}
	if err := s.validate.Struct(q); err != nil {
		return nil, fmt.Errorf("invalid activity query: %w", err)
	}

	decision := s.resolver.Resolve(requester, q.TargetUserID, q.DepartmentFilter)
	if !decision.Allowed {
		s.logger.Info("activity query denied",
			zap.String("requester", requester.ID),
			zap.String("role", string(requester.Role)),
			zap.String("target", q.TargetUserID))
		return nil, &ErrAccessDenied{Scope: decision.Scope}
	}

	limit := q.Limit
	if limit == 0 {
		limit = 50
	}

	records, err := s.reader.FetchRecords(ctx, decision.TargetSet, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	filtered := make([]domain.ActivityRecord, 0, len(records))
	for _, record := range records {
		policy := s.policies.GetPolicy(record.SubjectID)
		if out := s.filter.Apply(record, policy, requester, decision.Scope); out != nil {
			filtered = append(filtered, *out)
		}
	}

	return &QueryResult{Records: filtered, Scope: decision.Scope}, nil
}
