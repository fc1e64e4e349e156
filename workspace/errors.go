package workspace

import (
	"fmt"

	"github.com/pkg/errors"

	"go.viam.com/dexterity/referenceframe"
)

// A MetricNotFoundError is returned when a metric name is not in the registry.
type MetricNotFoundError struct {
	Name      string
	Available []string
}

func (e *MetricNotFoundError) Error() string {
	return fmt.Sprintf("metric %q not registered; available metrics are %v", e.Name, e.Available)
}

// IsMetricNotFoundError returns if the given error is any kind of metric not found error.
func IsMetricNotFoundError(err error) bool {
	var target *MetricNotFoundError
	return errors.As(err, &target)
}

// An InvalidLimitsError is returned when a joint range is inverted or not a number.
type InvalidLimitsError struct {
	Joint int
	Limit referenceframe.Limit
}

func (e *InvalidLimitsError) Error() string {
	return fmt.Sprintf("invalid limits for joint %d: min %v, max %v", e.Joint, e.Limit.Min, e.Limit.Max)
}

// IsInvalidLimitsError returns if the given error is any kind of invalid limits error.
func IsInvalidLimitsError(err error) bool {
	var target *InvalidLimitsError
	return errors.As(err, &target)
}

// A ColumnNotFoundError is returned when a sample store has never held the requested metric.
type ColumnNotFoundError struct {
	Name string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("no column %q in sample store", e.Name)
}

// IsColumnNotFoundError returns if the given error is any kind of column not found error.
func IsColumnNotFoundError(err error) bool {
	var target *ColumnNotFoundError
	return errors.As(err, &target)
}

// An EmptyColumnError is returned when a metric column has no populated rows to reduce.
type EmptyColumnError struct {
	Name string
}

func (e *EmptyColumnError) Error() string {
	return fmt.Sprintf("column %q has no populated rows", e.Name)
}

// IsEmptyColumnError returns if the given error is any kind of empty column error.
func IsEmptyColumnError(err error) bool {
	var target *EmptyColumnError
	return errors.As(err, &target)
}

// A LengthMismatchError is returned when two parallel slices disagree in length.
type LengthMismatchError struct {
	What     string
	Got      int
	Expected int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: got %d values, expected %d", e.What, e.Got, e.Expected)
}
