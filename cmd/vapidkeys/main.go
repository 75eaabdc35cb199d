// Command vapidkeys prints a fresh VAPID key pair for web push.
package main

import (
	"fmt"
	"log/slog"
	"os"

	webpush "github.com/SherClockHolmes/webpush-go"
)

func main() {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		slog.Error("failed to generate VAPID keys", "error", err)
		os.Exit(1)
	}

	fmt.Println("VAPID_PUBLIC_KEY=" + publicKey)
	fmt.Println("VAPID_PRIVATE_KEY=" + privateKey)
}
