// Package simulator implements a stand-in Evonic fire for development and tests.
//
// The simulator serves the same surface as a real fire: GET /modules.json
// returns the full state document, and a WebSocket accepts control frames
// and answers with partial updates pushed to every connected client.
//
// # Control frames
//
//	{"voice":"Fire_ON"}               power on (also Fire_OFF, Fire_ON/OFF)
//	{"voice":"Light_box"}             toggle the feature light
//	{"voice":"Aurora"}                select an effect from the model's catalog
//	{"cmd":"templevel 22"}            heater target
//	{"cmd":"rgb set 0 - 40 200 -"}    zone speed and brightness ("-" leaves a value alone)
//
// Frames the firmware could not act on, such as unknown tokens or
// out-of-range values, are logged and ignored; no update is sent.
//
// # Heater simulation
//
// With a TickInterval set, the room temperature rises one degree per tick
// while the heater runs and falls back toward its starting value otherwise.
// The heater runs while the fire is on and the room is below target.
//
// # Frame capture
//
// When CaptureDir is set, every received frame is appended to a daily
// capture-YYYYMMDD.jsonl file in that directory.
//
// The real fire serves HTTP on port 80 and the WebSocket on port 81. Start
// listens on both configured addresses with the same handler, so a client
// may use either port for either purpose.
package simulator
