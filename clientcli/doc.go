// Package clientcli provides a client library for talking to Atmos storage
// endpoints.
//
// It creates, reads, updates and deletes objects and manages the uid's
// subtenant. Every request is signed by the atmos driver.
// The package includes profile-based configuration for managing connections to multiple endpoints.
//
// # Basic Usage
//
// Create a client and upload a file:
//
//	cfg := &clientcli.Config{
//		Nodes:    []string{"10.0.0.1:9022"},
//		FSAccess: true,
//		UID:      "user1",
//		Secret:   "base64-secret",
//	}
//
//	client, err := clientcli.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Upload(ctx, clientcli.UploadOptions{
//		LocalPath:  "./file.txt",
//		RemotePath: "documents/file.txt",
//	})
//
// The first request of a client obtains a subtenant for the uid; later
// requests are signed as subtenant/uid.
//
// # Profile Configuration
//
// Use profiles to manage multiple endpoint configurations:
//
//	configFile, err := clientcli.LoadConfigFile("~/.atmos/config.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := clientcli.ConfigFromProfile(profile)
//	client, err := clientcli.New(cfg)
//
// # Output Formatting
//
// Use formatters for human-readable or JSON output:
//
//	formatter := clientcli.NewFormatter(jsonOutput, quiet)
//	formatter.FormatUpload(os.Stdout, result)
package clientcli
