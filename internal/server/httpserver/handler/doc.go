// Package handler provides HTTP request handlers for Steward.
//
// This package implements the HTTP API endpoints for account
// management, the authorization flows, and session command traffic.
package handler
