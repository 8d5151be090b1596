package main

import (
	"time"

	"go.uber.org/zap"
)

// loopSafely calls f for as long as running reports true, restarting the
// loop after a panic.
func loopSafely(log *zap.SugaredLogger, f func(), running func() bool) {
	defer func() {
		if v := recover(); v != nil {
			log.Errorf("Panic: %v, restarting", v)
			time.Sleep(time.Second)
			go loopSafely(log, f, running)
		}
	}()

	for running() {
		f()
	}
}
