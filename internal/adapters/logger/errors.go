package logger

import "go.trai.ch/zerr"

// ErrNoBuildLog is returned when the registered logger cannot mirror into a build log.
var ErrNoBuildLog = zerr.New("logger does not support build logs")
