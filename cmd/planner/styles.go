package main

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	amountStyle = lipgloss.NewStyle().Width(22).Align(lipgloss.Right)
	yearStyle   = lipgloss.NewStyle().Width(6)
	phaseStyle  = lipgloss.NewStyle().Width(14)
)
