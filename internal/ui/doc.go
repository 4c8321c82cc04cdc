// Package ui styles CLI output: [lipgloss] colors for status lines and go-pretty tables for play history.
package ui
