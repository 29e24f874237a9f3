// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of markdown help
// pages for the failures users hit most often.
package issue
