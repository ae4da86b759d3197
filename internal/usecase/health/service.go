package health

import (
	"context"
	"sort"

	"github.com/kailas-cloud/wsdlab/internal/transport/oracle"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const oracleCheck = "oracle"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Oracle *oracle.Status
}

type namedChecker struct {
	name    string
	checker Checker
}

// Service coordinates health checks.
type Service struct {
	checks []namedChecker
	oracle OracleChecker
}

// New creates a Service. oracle can be nil.
func New(oracle OracleChecker) *Service {
	return &Service{oracle: oracle}
}

// Register adds a named component check. Nil checkers are ignored.
func (s *Service) Register(name string, c Checker) *Service {
	if c != nil {
		s.checks = append(s.checks, namedChecker{name: name, checker: c})
	}
	return s
}

// Components returns the registered check names in sorted order.
func (s *Service) Components() []string {
	names := make([]string, 0, len(s.checks)+1)
	for _, c := range s.checks {
		names = append(names, c.name)
	}
	if s.oracle != nil {
		names = append(names, oracleCheck)
	}
	sort.Strings(names)
	return names
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checks)+1)

	for _, c := range s.checks {
		if err := c.checker.HealthCheck(ctx); err != nil {
			checks[c.name] = CheckError
		} else {
			checks[c.name] = CheckOK
		}
	}

	var oracleStatus *oracle.Status
	if s.oracle != nil {
		st := s.oracle.HealthCheck(ctx)
		oracleStatus = &st
		if st.Reachable {
			checks[oracleCheck] = CheckOK
		} else {
			checks[oracleCheck] = CheckError
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks, Oracle: oracleStatus}
}
