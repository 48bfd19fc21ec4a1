// Package middleware groups the fiber middleware used by the serve command.
//
//   - rayid: assigns every request an X-Ray-ID, reusing one sent by the
//     client, and stores it for logger.WithRayID.
//   - auth: rejects requests without the configured API key, except for
//     listed path prefixes such as the metrics endpoint.
//
// rayid must be registered before anything that logs.
package middleware
