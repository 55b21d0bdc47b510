// Command protodetect loads a signature-set file and either validates it or
// runs identification against a sample buffer from the command line.
package main

func main() {
	Execute()
}
