// Package serial provides byte-oriented serial port access for an
// interactive console, plus the line settings shared by the rest of the
// module.
//
// Two drivers are available:
//   - Open: raw syscall-based termios I/O on Linux. Reads are bounded by
//     poll, so a Read never blocks longer than Settings.ReadTimeout, and
//     a self-pipe makes pending reads killable by Close.
//   - OpenPortable: go.bug.st/serial, for platforms without the termios
//     driver. It cannot configure flow control.
//
// Both return a Conn, which adds the four modem status lines (CTS, DCD,
// RI, DSR) to io.ReadWriteCloser. A Read that times out returns (0, nil).
//
// Example usage:
//
//	cfg := serial.Config{
//	    Device:   "/dev/ttyUSB0",
//	    Settings: serial.DefaultSettings(115200),
//	}
//	conn, err := serial.OpenDriver(serial.DriverTermios, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	buf := make([]byte, 256)
//	for {
//	    n, err := conn.Read(buf)
//	    if err != nil {
//	        log.Println("Read error:", err)
//	        return
//	    }
//	    os.Stdout.Write(buf[:n])
//	}
//
// Port and PortablePort do not serialize Read against Write; the console
// shares one Conn between a reader and a writer goroutine behind a mutex.
package serial
