// Package xrmath holds the pose math used by the session core: validation of
// quaternions and vectors, pose composition and inversion, angular velocity
// integration and the space "locate" used when resolving views.
//
// All functions take and return values; none retain their inputs.
package xrmath
