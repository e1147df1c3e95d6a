package firebase

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and the clients the service uses
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
	Storage     *storage.Client // nil unless a bucket was configured
}

// InitFirebase initializes the Firebase application, the authentication
// client and, when bucket is set, the Cloud Storage client.
func InitFirebase(ctx context.Context, credentialsPath, bucket string, log *logrus.Logger) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}

	// Check if the credentials file exists
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	var conf *firebase.Config
	if bucket != "" {
		conf = &firebase.Config{StorageBucket: bucket}
	}
	firebaseApp, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	app := &App{FirebaseApp: firebaseApp, AuthClient: authClient}
	if bucket != "" {
		app.Storage, err = firebaseApp.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting firebase storage client: %w", err)
		}
	}

	log.WithField("storage", bucket != "").Info("Firebase app initialized")
	return app, nil
}
