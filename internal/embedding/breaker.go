// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package embedding

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/diversityfilter/internal/logging"
	"github.com/tomtom215/diversityfilter/internal/metrics"
)

// breakerSettings configures the artifact fetch breaker. Refreshes run every
// few seconds, so five consecutive failures open it for a minute.
type breakerSettings struct {
	name                string
	consecutiveFailures uint32
	openTimeout         time.Duration
	// isSuccessful decides which errors count against the breaker.
	isSuccessful func(error) bool
}

func defaultBreakerSettings(name string) breakerSettings {
	return breakerSettings{
		name:                name,
		consecutiveFailures: 5,
		openTimeout:         time.Minute,
		isSuccessful:        func(err error) bool { return err == nil },
	}
}

// fetchBreaker wraps gobreaker and mirrors its state into Prometheus.
type fetchBreaker[T any] struct {
	cb   *gobreaker.CircuitBreaker[T]
	name string
}

func newFetchBreaker[T any](s breakerSettings) *fetchBreaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(s.name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(0)

	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        s.name,
		MaxRequests: 1,
		Interval:    0, // counts only reset on state change
		Timeout:     s.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= s.consecutiveFailures
			if trip {
				logging.Warn().Str("breaker", s.name).Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
		IsSuccessful: s.isSuccessful,
	})

	return &fetchBreaker[T]{cb: cb, name: s.name}
}

// execute runs fn through the breaker and records the outcome.
func (b *fetchBreaker[T]) execute(fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return result, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// State returns the current breaker state.
func (b *fetchBreaker[T]) State() gobreaker.State {
	return b.cb.State()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
