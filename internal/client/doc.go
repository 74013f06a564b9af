// Package client is the quizgen client state controller. It owns the
// working question list, saves it locally after a quiet period, tracks
// server reachability with polling and exponential backoff, and drops
// the local snapshot once an export succeeds.
//
// State transitions are a pure function (Reduce); Controller runs the
// side effects around it.
package client
