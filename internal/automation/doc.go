// Package automation runs scripted painting sessions headless. A scenario
// is a YAML list of steps (strokes, dabs, control changes, waits, undo)
// played through a studio with fixed frame times; a sweep reruns one
// scenario across values of a control, one goroutine per run.
package automation
