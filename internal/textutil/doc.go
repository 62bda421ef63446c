// Package textutil turns free-form titles into path segments that are safe on
// every filesystem the library may live on.
package textutil
