// Package audio implements dismissal.AudioPlayer on top of beep.
//
// Sounds are decoded once into memory, so playing again from the start or
// changing the volume never pays the decode latency. A Player that cannot
// open the speaker keeps working in silent mode: loads succeed and every
// call is tracked, nothing is heard.
package audio
