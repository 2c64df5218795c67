// Package metrics publishes pipeline counters via expvar.
package metrics

import "expvar"

var (
	stepsExecuted   = new(expvar.Int)
	stepsReused     = new(expvar.Int)
	stepsFailed     = new(expvar.Int)
	remoteCalls     = new(expvar.Int)
	remoteRetries   = new(expvar.Int)
	checkpointSaves = new(expvar.Int)
)

func init() {
	expvar.Publish("analysis_steps_executed_total", stepsExecuted)
	expvar.Publish("analysis_steps_reused_total", stepsReused)
	expvar.Publish("analysis_steps_failed_total", stepsFailed)
	expvar.Publish("analysis_remote_calls_total", remoteCalls)
	expvar.Publish("analysis_remote_retries_total", remoteRetries)
	expvar.Publish("analysis_checkpoint_saves_total", checkpointSaves)
}

func IncStepsExecuted()   { stepsExecuted.Add(1) }
func IncStepsReused()     { stepsReused.Add(1) }
func IncStepsFailed()     { stepsFailed.Add(1) }
func IncRemoteCalls()     { remoteCalls.Add(1) }
func IncRemoteRetries()   { remoteRetries.Add(1) }
func IncCheckpointSaves() { checkpointSaves.Add(1) }
