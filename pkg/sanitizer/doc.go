// Package sanitizer provides input normalization functions for booking data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings rather than errors.
//
// Normalization includes:
//   - Guest names: Collapse whitespace, trim leading/trailing spaces
//   - Labels: Lowercase, remove all special characters - "Sea View" becomes "sea_view"
//   - Reasons: Collapse whitespace, cap length so free text cannot bloat documents
//   - Timezones: Validate IANA identifier shape, collapse repeated slashes
//   - Numbers: Clamp to valid ranges
package sanitizer
