package ws2811

import "fmt"

// Status mirrors ws2811_return_t. Zero is success; failures are negative.
type Status int

const (
	Success             Status = 0
	ErrorGeneric        Status = -1
	ErrorOutOfMemory    Status = -2
	ErrorHWNotSupported Status = -3
	ErrorMemLock        Status = -4
	ErrorMmap           Status = -5
	ErrorMapRegisters   Status = -6
	ErrorGPIOInit       Status = -7
	ErrorPWMSetup       Status = -8
	ErrorMailboxDevice  Status = -9
	ErrorDMA            Status = -10
	ErrorIllegalGPIO    Status = -11
	ErrorPCMSetup       Status = -12
	ErrorSPISetup       Status = -13
	ErrorSPITransfer    Status = -14
)

var statusText = map[Status]string{
	Success:             "Success",
	ErrorGeneric:        "Generic failure",
	ErrorOutOfMemory:    "Out of memory",
	ErrorHWNotSupported: "Hardware revision is not supported",
	ErrorMemLock:        "Memory lock failed",
	ErrorMmap:           "mmap() failed",
	ErrorMapRegisters:   "Unable to map registers into userspace",
	ErrorGPIOInit:       "Unable to initialize GPIO",
	ErrorPWMSetup:       "Unable to initialize PWM",
	ErrorMailboxDevice:  "Failed to create mailbox device",
	ErrorDMA:            "DMA error",
	ErrorIllegalGPIO:    "Selected GPIO not possible",
	ErrorPCMSetup:       "Unable to initialize PCM",
	ErrorSPISetup:       "Unable to initialize SPI",
	ErrorSPITransfer:    "SPI transfer error",
}

func (s Status) OK() bool { return s == Success }

func (s Status) String() string {
	if t, ok := statusText[s]; ok {
		return t
	}
	return fmt.Sprintf("Unknown status %d", int(s))
}

// Error makes a failing Status usable as an error value.
func (s Status) Error() string {
	return fmt.Sprintf("ws2811: %s (%d)", s.String(), int(s))
}
