// Command twislave-host talks to the TWI slave firmware from a host
// computer: it decodes the firmware's serial reports, drives exchanges over
// a Linux I2C adapter, and runs the slave against a simulated bus.
package main

func main() {
	Execute()
}
