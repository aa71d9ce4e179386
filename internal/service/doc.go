// Package service contains the business logic for the car rental API.
// Services validate inputs, apply pricing and date policies, and orchestrate
// repo and collaborator calls. No SQL or HTTP lives here; services depend on
// interfaces declared in this package or in repo.
package service
