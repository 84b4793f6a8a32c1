// package ui implements the bubbletea progress view for download runs.
package ui
