/*
Package mirror provides the optimistic-cache primitive shared by parameter
bindings and the activation state machine.

A Value holds a local copy of a remotely owned value. Local writes land
immediately; remote notifications are applied only while no local operation
holds the value; releasing the hold reconciles with the remote authority.
A Flag is the bare in-flight marker used where no value needs mirroring.
*/
package mirror
